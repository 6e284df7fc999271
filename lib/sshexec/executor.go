// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package sshexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/muster-ops/muster/lib/fanout"
)

// remoteShell reads the script from stdin, so the remote side needs no
// copy of the file and no writable filesystem.
const remoteShell = "/bin/sh -s"

const defaultConnectTimeout = 10 * time.Second

// Executor runs scripts on remote hosts over SSH. It implements
// fanout.Runner and is safe for concurrent use: the client
// configuration is built once and shared, while each Run dials its own
// connection.
type Executor struct {
	// Login is the remote username.
	Login string

	// IdentityFile is an optional path to a private key in OpenSSH or
	// PEM format. When empty the executor relies on the agent at
	// SSH_AUTH_SOCK.
	IdentityFile string

	// KnownHostsFile enables host key verification against the named
	// file. Empty disables verification.
	KnownHostsFile string

	// Port is the SSH port on every target. Zero means 22.
	Port int

	// ConnectTimeout bounds the TCP dial and the protocol handshake,
	// separately, for each connection. Zero means ten seconds.
	ConnectTimeout time.Duration

	Logger *slog.Logger

	configOnce sync.Once
	config     *ssh.ClientConfig
	configErr  error
}

var _ fanout.Runner = (*Executor)(nil)

// connection pairs a target client with the bastion client it was
// tunnelled through, if any.
type connection struct {
	client  *ssh.Client
	bastion *ssh.Client
}

func (c *connection) Close() error {
	err := c.client.Close()
	if c.bastion != nil {
		if berr := c.bastion.Close(); err == nil {
			err = berr
		}
	}
	return err
}

// Run connects to the job's host, streams the script to a remote
// shell, and reports the combined output or a classified failure. It
// never returns an error past this boundary; every outcome is a
// Result.
func (e *Executor) Run(ctx context.Context, job fanout.Job) fanout.Result {
	conn, err := e.connect(ctx, job)
	if err != nil {
		kind, detail := classify(err)
		e.logger().Debug("connection failed",
			"host", job.Host,
			"kind", kind.String(),
			"detail", detail)
		return fanout.Result{Host: job.Host, Kind: kind, Detail: detail}
	}
	defer conn.Close()

	output, err := e.execute(ctx, conn.client, job)
	if err != nil {
		kind, detail := classify(err)
		e.logger().Debug("execution failed",
			"host", job.Host,
			"kind", kind.String(),
			"detail", detail)
		return fanout.Result{Host: job.Host, Output: string(output), Kind: kind, Detail: detail}
	}
	e.logger().Debug("script completed", "host", job.Host, "script", job.Script.Name)
	return fanout.Result{Host: job.Host, Output: string(output)}
}

func (e *Executor) connect(ctx context.Context, job fanout.Job) (*connection, error) {
	config, err := e.clientConfig()
	if err != nil {
		return nil, &authError{err}
	}

	if job.Jumpbox == "" {
		client, err := e.dialDirect(ctx, config, e.address(job.Host))
		if err != nil {
			return nil, err
		}
		return &connection{client: client}, nil
	}

	bastion, err := e.dialDirect(ctx, config, e.address(job.Jumpbox))
	if err != nil {
		return nil, err
	}
	client, err := e.dialThrough(ctx, bastion, config, e.address(job.Host))
	if err != nil {
		bastion.Close()
		return nil, err
	}
	return &connection{client: client, bastion: bastion}, nil
}

// dialDirect opens a TCP connection and completes the SSH handshake.
// The connect timeout covers the handshake as well as the dial; a host
// that accepts the connection and then goes silent would otherwise
// hang a worker forever.
func (e *Executor) dialDirect(ctx context.Context, config *ssh.ClientConfig, address string) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: e.timeout()}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &dialError{fmt.Errorf("dial %s: %w", address, err)}
	}
	return e.handshake(netConn, config, address)
}

// dialThrough opens a connection to address tunnelled through an
// established bastion client.
func (e *Executor) dialThrough(ctx context.Context, bastion *ssh.Client, config *ssh.ClientConfig, address string) (*ssh.Client, error) {
	netConn, err := bastion.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &dialError{fmt.Errorf("dial %s via jumpbox: %w", address, err)}
	}
	return e.handshake(netConn, config, address)
}

// handshake completes the SSH handshake over an established
// connection. A watchdog timer closes the conn to bound the handshake;
// SetDeadline would be simpler but the channel-backed conns a bastion
// hop returns do not support it.
func (e *Executor) handshake(netConn net.Conn, config *ssh.ClientConfig, address string) (*ssh.Client, error) {
	timer := time.AfterFunc(e.timeout(), func() { netConn.Close() })
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, address, config)
	if expired := !timer.Stop(); expired {
		if err == nil {
			ssh.NewClient(sshConn, chans, reqs).Close()
		}
		return nil, &dialError{fmt.Errorf("handshake with %s: %w", address, os.ErrDeadlineExceeded)}
	}
	if err != nil {
		netConn.Close()
		return nil, &dialError{fmt.Errorf("handshake with %s: %w", address, err)}
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// execute streams the script to a remote shell and captures combined
// output. Cancellation tears down the session; the abandoned
// CombinedOutput goroutine drains into a buffered channel.
func (e *Executor) execute(ctx context.Context, client *ssh.Client, job fanout.Job) ([]byte, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open session on %s: %w", job.Host, err)
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(job.Script.Body)

	type outcome struct {
		output []byte
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		output, err := session.CombinedOutput(remoteShell)
		done <- outcome{output, err}
	}()

	select {
	case result := <-done:
		return result.output, result.err
	case <-ctx.Done():
		session.Close()
		return nil, ctx.Err()
	}
}

// clientConfig builds the shared SSH client configuration on first use.
// All workers see the same config, so the agent socket is dialed at
// most once per run.
func (e *Executor) clientConfig() (*ssh.ClientConfig, error) {
	e.configOnce.Do(func() {
		e.config, e.configErr = e.buildConfig()
	})
	return e.config, e.configErr
}

func (e *Executor) buildConfig() (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod
	if e.IdentityFile != "" {
		key, err := os.ReadFile(e.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse identity file %s: %w", e.IdentityFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		agentConn, err := net.Dial("unix", socket)
		if err != nil {
			if e.IdentityFile == "" {
				return nil, fmt.Errorf("connect to ssh agent: %w", err)
			}
			e.logger().Debug("ssh agent unavailable, using identity file only", "error", err)
		} else {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
		}
	}
	if len(methods) == 0 {
		return nil, errors.New("no authentication available: provide an identity file or start an ssh agent")
	}

	hostKeys, err := e.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            e.Login,
		Auth:            methods,
		HostKeyCallback: hostKeys,
		Timeout:         e.timeout(),
	}, nil
}

func (e *Executor) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if e.KnownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	callback, err := knownhosts.New(e.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("load known hosts file %s: %w", e.KnownHostsFile, err)
	}
	return callback, nil
}

// address appends the configured port unless the host already carries
// one.
func (e *Executor) address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(e.port()))
}

func (e *Executor) port() int {
	if e.Port > 0 {
		return e.Port
	}
	return 22
}

func (e *Executor) timeout() time.Duration {
	if e.ConnectTimeout > 0 {
		return e.ConnectTimeout
	}
	return defaultConnectTimeout
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
