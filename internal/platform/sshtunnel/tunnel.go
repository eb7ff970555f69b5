// Package sshtunnel forwards a local TCP port through an SSH bastion, used to
// reach the production database from a developer machine.
package sshtunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type Config struct {
	// Host is the bastion address, host or host:port.
	Host string
	User string
	// PrivateKey is PEM key material; PrivateKeyPath is read when it is empty.
	PrivateKey     string
	PrivateKeyPath string
	Password       string
	KnownHostsPath string
	// RemoteAddr is dialled from the bastion, e.g. "db.internal:3306".
	RemoteAddr string
	Timeout    time.Duration
}

type Tunnel struct {
	log      *logger.Logger
	client   *ssh.Client
	listener net.Listener
	remote   string

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func Start(ctx context.Context, cfg Config, log *logger.Logger) (*Tunnel, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.RemoteAddr == "" {
		return nil, errors.New("sshtunnel: host, user and remote address are required")
	}
	log = log.With("component", "SSHTunnel", "bastion", cfg.Host)

	auths, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback(cfg, log)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	addr := cfg.Host
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, "22")
	}

	var d net.Dialer
	d.Timeout = timeout
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sshtunnel: dial bastion: %w", err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sshtunnel: handshake: %w", err)
	}
	client := ssh.NewClient(c, chans, reqs)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sshtunnel: listen: %w", err)
	}

	t := &Tunnel{log: log, client: client, listener: ln, remote: cfg.RemoteAddr}
	t.wg.Add(1)
	go t.acceptLoop()
	log.Info("SSH tunnel active", "local", ln.Addr().String(), "remote", cfg.RemoteAddr)
	return t, nil
}

// LocalAddr is the 127.0.0.1:port the database driver should connect to.
func (t *Tunnel) LocalAddr() string { return t.listener.Addr().String() }

func (t *Tunnel) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = errors.Join(t.listener.Close(), t.client.Close())
		t.wg.Wait()
	})
	return err
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.log.Warn("SSH tunnel accept failed", "error", err)
			}
			return
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.remote)
	if err != nil {
		t.log.Error("SSH tunnel remote dial failed", "error", err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() { _, _ = io.Copy(remote, local); done <- struct{}{} }()
	go func() { _, _ = io.Copy(local, remote); done <- struct{}{} }()
	<-done
}

func authMethods(cfg Config) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	key := []byte(cfg.PrivateKey)
	if len(key) == 0 && cfg.PrivateKeyPath != "" {
		b, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("sshtunnel: read private key: %w", err)
		}
		key = b
	}
	if len(key) > 0 {
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("sshtunnel: parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("sshtunnel: no private key or password configured")
	}
	return methods, nil
}

func hostKeyCallback(cfg Config, log *logger.Logger) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsPath == "" {
		log.Warn("SSH_KNOWN_HOSTS not set, bastion host key is not verified")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(cfg.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("sshtunnel: known hosts: %w", err)
	}
	return cb, nil
}
