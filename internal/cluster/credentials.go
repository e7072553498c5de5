package cluster

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kubeseed/kubeseed/internal/platform/ssh"
)

// ErrAlreadyIssued is returned when Issue is called again without an
// explicit Invalidate. Every mint produces a fresh token, so silent
// re-invocation would orphan the previous one.
var ErrAlreadyIssued = errors.New("join credential already issued")

// JoinCredential authenticates a secondary node to the primary's API server
// during join. It is minted once per bootstrap run, read by every joiner,
// and discarded afterwards. The sensitive fields are unexported and never
// logged; Wipe clears them once the last consumer is done.
type JoinCredential struct {
	// Endpoint is the primary's API address as host:port.
	Endpoint string

	token      string
	caCertHash string
}

// Token returns the time-limited bootstrap token.
func (c *JoinCredential) Token() string { return c.token }

// CACertHash returns the discovery CA certificate hash.
func (c *JoinCredential) CACertHash() string { return c.caCertHash }

// JoinCommand renders the kubeadm join invocation for this credential.
func (c *JoinCredential) JoinCommand(ignorePreflight bool) string {
	cmd := fmt.Sprintf("kubeadm join %s --token %s --discovery-token-ca-cert-hash %s",
		c.Endpoint, c.token, c.caCertHash)
	if ignorePreflight {
		cmd += " --ignore-preflight-errors=all"
	}
	return cmd
}

// String implements fmt.Stringer with the secret material redacted.
func (c *JoinCredential) String() string {
	return fmt.Sprintf("JoinCredential{endpoint: %s, token: [redacted], hash: [redacted]}", c.Endpoint)
}

// Wipe overwrites the secret fields. The credential is unusable afterwards.
func (c *JoinCredential) Wipe() {
	c.token = strings.Repeat("0", len(c.token))
	c.caCertHash = strings.Repeat("0", len(c.caCertHash))
	c.token = ""
	c.caCertHash = ""
}

// IssuerStrategy mints a token and CA-cert-hash on or via the primary node.
type IssuerStrategy interface {
	// Mint produces a fresh token and discovery hash. Every call mints a
	// new token; minting is not idempotent.
	Mint(ctx context.Context) (token, caCertHash string, err error)
}

// Issuer produces the run's single JoinCredential. It refuses a second
// Issue call unless the previous credential was explicitly invalidated.
type Issuer struct {
	strategy IssuerStrategy
	endpoint string

	mu     sync.Mutex
	issued bool
}

// NewIssuer creates an issuer that stamps credentials with the given API
// endpoint (host:port).
func NewIssuer(strategy IssuerStrategy, endpoint string) *Issuer {
	return &Issuer{strategy: strategy, endpoint: endpoint}
}

// Issue mints the join credential. Failure is a CredentialError and fatal
// for the provisioning run: secondaries cannot proceed without it.
func (i *Issuer) Issue(ctx context.Context) (*JoinCredential, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.issued {
		return nil, ErrAlreadyIssued
	}

	token, hash, err := i.strategy.Mint(ctx)
	if err != nil {
		return nil, &CredentialError{Err: err}
	}

	i.issued = true
	return &JoinCredential{
		Endpoint:   i.endpoint,
		token:      token,
		caCertHash: hash,
	}, nil
}

// Invalidate marks the previously issued credential as dead, permitting a
// fresh Issue. The caller is responsible for wiping the old credential.
func (i *Issuer) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.issued = false
}

const mintCommand = "kubeadm token create --print-join-command"

// joinCommandPath is where the file strategy persists the minted join
// command on the primary.
const joinCommandPath = "/etc/kubernetes/kubeseed-join-command"

// RemoteMintStrategy asks the primary for a new token over the remote
// transport and parses the textual output into discrete fields.
type RemoteMintStrategy struct {
	comm ssh.Communicator
}

// NewRemoteMintStrategy creates the external-derivation strategy.
func NewRemoteMintStrategy(comm ssh.Communicator) *RemoteMintStrategy {
	return &RemoteMintStrategy{comm: comm}
}

// Mint implements IssuerStrategy.
func (s *RemoteMintStrategy) Mint(ctx context.Context) (string, string, error) {
	output, err := s.comm.Execute(ctx, mintCommand)
	if err != nil {
		return "", "", fmt.Errorf("minting token on primary: %w", err)
	}
	return ParseJoinCommand(output)
}

// FileMintStrategy mints the join command to a well-known path on the
// primary and fetches it back over the remote transport.
type FileMintStrategy struct {
	comm ssh.Communicator
	path string
}

// NewFileMintStrategy creates the local-mint-plus-fetch strategy.
// An empty path uses the default location.
func NewFileMintStrategy(comm ssh.Communicator, path string) *FileMintStrategy {
	if path == "" {
		path = joinCommandPath
	}
	return &FileMintStrategy{comm: comm, path: path}
}

// Mint implements IssuerStrategy.
func (s *FileMintStrategy) Mint(ctx context.Context) (string, string, error) {
	persist := fmt.Sprintf("%s > %q && chmod 600 %q", mintCommand, s.path, s.path)
	if _, err := s.comm.Execute(ctx, persist); err != nil {
		return "", "", fmt.Errorf("persisting join command on primary: %w", err)
	}

	output, err := s.comm.Execute(ctx, fmt.Sprintf("cat %q", s.path))
	if err != nil {
		return "", "", fmt.Errorf("fetching join command from primary: %w", err)
	}
	return ParseJoinCommand(output)
}

var (
	tokenRe  = regexp.MustCompile(`--token\s+([a-z0-9]{6}\.[a-z0-9]{16})`)
	caHashRe = regexp.MustCompile(`--discovery-token-ca-cert-hash\s+(sha256:[0-9a-f]{64})`)
)

// ParseJoinCommand extracts the bootstrap token and CA cert hash from
// kubeadm's printed join command. Parsing is independent of the transport
// so malformed output is detectable without a live cluster.
func ParseJoinCommand(output string) (token, caCertHash string, err error) {
	tokenMatch := tokenRe.FindStringSubmatch(output)
	if tokenMatch == nil {
		return "", "", errors.New("no parseable token in kubeadm output")
	}

	hashMatch := caHashRe.FindStringSubmatch(output)
	if hashMatch == nil {
		return "", "", errors.New("no parseable discovery hash in kubeadm output")
	}

	return tokenMatch[1], hashMatch[1], nil
}
