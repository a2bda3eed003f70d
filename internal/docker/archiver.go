package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
)

// ArchiverImage runs tar for both directions of an archive operation. The
// volume is never touched by this process directly; all reads and writes go
// through a short-lived container.
const ArchiverImage = "alpine:latest"

// Compress archives the volume's contents into hostDir/archiveName as a
// gzip-compressed tarball. The volume is mounted read-only.
func (c *Client) Compress(ctx context.Context, volumeName, hostDir, archiveName string) error {
	cmd := fmt.Sprintf("tar czf /backup/%s -C /volume-data .", archiveName)

	mounts := []mount.Mount{
		{
			Type:     mount.TypeVolume,
			Source:   volumeName,
			Target:   "/volume-data",
			ReadOnly: true,
		},
		{
			Type:   mount.TypeBind,
			Source: hostDir,
			Target: "/backup",
		},
	}

	if err := c.runArchiveContainer(ctx, cmd, mounts); err != nil {
		return fmt.Errorf("archive of volume %s failed: %w", volumeName, err)
	}
	return nil
}

// Extract unpacks hostDir/archiveName into the volume, clearing any
// existing contents first. The archive directory is mounted read-only.
func (c *Client) Extract(ctx context.Context, volumeName, hostDir, archiveName string) error {
	cmd := fmt.Sprintf("rm -rf /volume-data/* /volume-data/..?* /volume-data/.[!.]* 2>/dev/null || true && tar xzf /backup/%s -C /volume-data", archiveName)

	mounts := []mount.Mount{
		{
			Type:   mount.TypeVolume,
			Source: volumeName,
			Target: "/volume-data",
		},
		{
			Type:     mount.TypeBind,
			Source:   hostDir,
			Target:   "/backup",
			ReadOnly: true,
		},
	}

	if err := c.runArchiveContainer(ctx, cmd, mounts); err != nil {
		return fmt.Errorf("extract into volume %s failed: %w", volumeName, err)
	}
	return nil
}

func (c *Client) runArchiveContainer(ctx context.Context, cmd string, mounts []mount.Mount) error {
	if err := c.ensureImage(ctx, ArchiverImage); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, ArchiveOpTimeout)
	defer cancel()

	config := &container.Config{
		Image: ArchiverImage,
		Cmd:   []string{"sh", "-c", cmd},
	}

	hostConfig := &container.HostConfig{
		Mounts:     mounts,
		AutoRemove: true,
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create archive container: %w", err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start archive container: %w", err)
	}

	statusCh, errCh := c.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error waiting for archive container: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return fmt.Errorf("archive container exited with code %d", status.StatusCode)
		}
	}

	return nil
}

func (c *Client) ensureImage(ctx context.Context, imageName string) error {
	_, _, err := c.cli.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect image %s: %w", imageName, err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, ImagePullTimeout)
	defer cancel()

	reader, err := c.cli.ImagePull(pullCtx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// drain so the pull actually completes
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to read pull output: %w", err)
	}

	return nil
}
