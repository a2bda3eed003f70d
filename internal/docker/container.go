package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/volbak/volbak/pkg/models"
)

func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	ctx, cancel := context.WithTimeout(ctx, ContainerOpTimeout)
	defer cancel()

	err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container %s: %w", containerID, err)
	}

	return nil
}

func (c *Client) StopContainer(ctx context.Context, containerID string) error {
	ctx, cancel := context.WithTimeout(ctx, ContainerOpTimeout)
	defer cancel()

	timeout := 10
	err := c.cli.ContainerStop(ctx, containerID, container.StopOptions{
		Timeout: &timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to stop container %s: %w", containerID, err)
	}

	return nil
}

// ContainersUsingVolume returns every container (running or not) with the
// volume mounted, running ones first.
func (c *Client) ContainersUsingVolume(ctx context.Context, volumeName string) ([]models.Container, error) {
	ctx, cancel := context.WithTimeout(ctx, ContainerOpTimeout)
	defer cancel()

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("volume", volumeName)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for volume %s: %w", volumeName, err)
	}

	result := make([]models.Container, 0, len(containers))
	for _, cont := range containers {
		result = append(result, models.Container{
			ID:      cont.ID,
			Name:    containerDisplayName(cont.Names, cont.ID),
			Running: cont.State == "running",
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Running && !result[j].Running
	})

	return result, nil
}

// RunningVolumeNames returns the names of volumes mounted into at least one
// running container.
func (c *Client) RunningVolumeNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ContainerOpTimeout)
	defer cancel()

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list running containers: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, cont := range containers {
		for _, m := range cont.Mounts {
			if m.Type != mount.TypeVolume || m.Name == "" {
				continue
			}
			if !seen[m.Name] {
				seen[m.Name] = true
				names = append(names, m.Name)
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

func containerDisplayName(names []string, id string) string {
	if len(names) > 0 {
		return strings.TrimPrefix(names[0], "/")
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
