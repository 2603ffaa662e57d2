package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

const defaultSSHPort = "22"

// RemoteDirectory archives a directory on a remote host with tar, then
// pulls the archive over an SFTP subchannel of the same session.
type RemoteDirectory struct {
	base
	host      string
	path      string
	sshConfig *ssh.ClientConfig
}

func newRemoteDirectory(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	for key, value := range map[string]string{
		"host": cfg.Host,
		"user": cfg.User,
		"pass": cfg.Pass,
		"path": cfg.Path,
	} {
		if value == "" {
			return nil, domain.MissingKeyError("remote_directory", key)
		}
	}

	r := &RemoteDirectory{
		base: base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		host: cfg.Host,
		path: cfg.Path,
		sshConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         30 * time.Second,
		},
	}

	if err := r.testConnection(); err != nil {
		return nil, &domain.SourceUnreachableError{Source: cfg.Name, Err: err}
	}

	return r, nil
}

func (r *RemoteDirectory) Type() string { return "remote_directory" }

// testConnection opens and closes a session to verify the host is
// reachable and the credentials authenticate.
func (r *RemoteDirectory) testConnection() error {
	client, err := ssh.Dial("tcp", fixHostName(r.host), r.sshConfig)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return err
	}
	return session.Close()
}

func (r *RemoteDirectory) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	outputPath, err := r.outputPath(timestamp, "tar")
	if err != nil {
		return "", err
	}

	client, err := ssh.Dial("tcp", fixHostName(r.host), r.sshConfig)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", r.host, err)
	}
	defer client.Close()

	remotePath := fmt.Sprintf("/tmp/%s-%s.tar",
		strings.ReplaceAll(r.name, " ", "_"), timestamp.Format(timestampLayout))

	if err := r.runArchiveCommand(client, remotePath); err != nil {
		return "", err
	}

	if err := r.fetch(client, remotePath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

func (r *RemoteDirectory) runArchiveCommand(client *ssh.Client, remotePath string) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	command := fmt.Sprintf("tar -cf %s %s", remotePath, r.path)
	if output, err := session.CombinedOutput(command); err != nil {
		return fmt.Errorf("remote archive command failed: %w, output: %s", err, string(output))
	}
	return nil
}

// fetch transfers the remote archive over SFTP on the already
// authenticated connection.
func (r *RemoteDirectory) fetch(client *ssh.Client, remotePath, localPath string) error {
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("failed to open sftp channel: %w", err)
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote archive: %w", err)
	}
	defer remote.Close()

	local, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local artifact: %w", err)
	}
	defer local.Close()

	if _, err := io.Copy(local, remote); err != nil {
		return fmt.Errorf("failed to transfer archive: %w", err)
	}
	return nil
}

// fixHostName adds the default SSH port if none is set.
func fixHostName(host string) string {
	if !strings.Contains(host, ":") {
		return host + ":" + defaultSSHPort
	}
	return host
}
