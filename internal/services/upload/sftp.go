package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConnector authenticates with the private key, or with the passphrase as
// password when no key is configured.
type SFTPConnector struct{}

func (SFTPConnector) Connect(ctx context.Context, target Target) (Session, error) {
	auth, err := authMethods(target)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User: target.Username,
		Auth: auth,
		// Servers are configured by the merchant without a pinned host key.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         target.Timeout,
	}

	dialer := net.Dialer{Timeout: target.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, target.Addr(), config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, err
	}

	return &sftpSession{ssh: sshClient, client: client, root: target.Root}, nil
}

func authMethods(target Target) ([]ssh.AuthMethod, error) {
	if target.PrivateKey == "" {
		if target.Passphrase == "" {
			return nil, errors.New("no sftp credentials configured")
		}
		return []ssh.AuthMethod{ssh.Password(target.Passphrase)}, nil
	}

	var (
		signer ssh.Signer
		err    error
	)
	if target.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(target.PrivateKey), []byte(target.Passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey([]byte(target.PrivateKey))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

type sftpSession struct {
	ssh    *ssh.Client
	client *sftp.Client
	root   string
}

func (s *sftpSession) WriteStream(remoteName string, r io.Reader) error {
	if err := s.client.MkdirAll(s.root); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.root, err)
	}

	f, err := s.client.Create(path.Join(s.root, remoteName))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *sftpSession) Close() error {
	s.client.Close()
	return s.ssh.Close()
}
