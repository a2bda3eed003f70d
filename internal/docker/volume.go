package docker

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/volume"
)

func (c *Client) CreateVolume(ctx context.Context, volumeName string) error {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   volumeName,
		Driver: "local",
		Labels: map[string]string{
			"volbak.restored": "true",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create volume %s: %w", volumeName, err)
	}

	return nil
}

func (c *Client) RemoveVolume(ctx context.Context, volumeName string) error {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	if err := c.cli.VolumeRemove(ctx, volumeName, true); err != nil {
		return fmt.Errorf("failed to remove volume %s: %w", volumeName, err)
	}

	return nil
}

func (c *Client) VolumeExists(ctx context.Context, volumeName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	_, err := c.cli.VolumeInspect(ctx, volumeName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListVolumeNames returns the names of every named volume the runtime knows
// about, for interactive selection.
func (c *Client) ListVolumeNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, VolumeOpTimeout)
	defer cancel()

	resp, err := c.cli.VolumeList(ctx, volume.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}

	names := make([]string, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		names = append(names, v.Name)
	}
	return names, nil
}
