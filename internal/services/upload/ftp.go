package upload

import (
	"context"
	"io"
	"path"

	"github.com/jlaffaye/ftp"
)

// FTPConnector logs in with the username and the passphrase as password.
type FTPConnector struct{}

func (FTPConnector) Connect(ctx context.Context, target Target) (Session, error) {
	conn, err := ftp.Dial(target.Addr(),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(target.Timeout),
	)
	if err != nil {
		return nil, err
	}

	if err := conn.Login(target.Username, target.Passphrase); err != nil {
		conn.Quit()
		return nil, err
	}

	return &ftpSession{conn: conn, root: target.Root}, nil
}

type ftpSession struct {
	conn *ftp.ServerConn
	root string
}

func (s *ftpSession) WriteStream(remoteName string, r io.Reader) error {
	return s.conn.Stor(path.Join(s.root, remoteName), r)
}

func (s *ftpSession) Close() error {
	return s.conn.Quit()
}
