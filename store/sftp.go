package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"bucketdrop/credentials"
)

// sftpStore treats a remote directory tree as the object store: a bucket
// is a top-level directory under the base dir, an object a file beneath
// it.
type sftpStore struct {
	sshClient *ssh.Client
	client    *sftp.Client
	baseDir   string
}

// OpenSFTP loads the sftp record and establishes the connection.
func OpenSFTP(ctx context.Context) (ObjectStore, error) {
	creds, err := credentials.LoadSFTP()
	if err != nil {
		return nil, err
	}

	var auths []ssh.AuthMethod
	if creds.PrivateKey != "" {
		// try to decode as base64, fall back to raw PEM
		keyBytes, err := base64.StdEncoding.DecodeString(creds.PrivateKey)
		if err != nil {
			keyBytes = []byte(creds.PrivateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	} else if creds.Password != "" {
		auths = append(auths, ssh.Password(creds.Password))
	} else {
		return nil, fmt.Errorf("sftp record needs password or private_key")
	}

	sshConfig := &ssh.ClientConfig{
		User:            creds.User,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(creds.Host, creds.Port)

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("create sftp client: %w", err)
	}

	return &sftpStore{sshClient: sshClient, client: sftpClient, baseDir: creds.BaseDir}, nil
}

func (s *sftpStore) EnsureBucket(ctx context.Context, name string) (bool, error) {
	dir := path.Join(s.baseDir, name)
	if info, err := s.client.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, &BucketError{Bucket: name, Err: fmt.Errorf("%s exists and is not a directory", dir)}
		}
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, &BucketError{Bucket: name, Err: err}
	}
	if err := mkdirAllSFTP(s.client, dir); err != nil {
		return false, &BucketError{Bucket: name, Err: err}
	}
	return true, nil
}

func (s *sftpStore) Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	remotePath := path.Join(s.baseDir, bucket, key)

	if err := mkdirAllSFTP(s.client, path.Dir(remotePath)); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", path.Dir(remotePath), err)
	}

	f, err := s.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}
	return nil
}

func (s *sftpStore) Close() error {
	err := s.client.Close()
	if cerr := s.sshClient.Close(); err == nil {
		err = cerr
	}
	return err
}

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(dir, "/")
	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		cur = path.Join(cur, part)
		if info, err := client.Stat(cur); err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s exists and is not a directory", cur)
			}
			continue
		}
		if err := client.Mkdir(cur); err != nil {
			// Another segment may have been created concurrently.
			if info, statErr := client.Stat(cur); statErr == nil && info.IsDir() {
				continue
			}
			return err
		}
	}
	return nil
}
