package outreach

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Message is one outgoing email.
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Unavailable is a Sender that always fails with ErrSenderUnavailable. It
// stands in when Gmail credentials could not be loaded at startup.
type Unavailable struct{ Reason error }

func (u Unavailable) Send(context.Context, Message) error {
	return fmt.Errorf("%w: %v", ErrSenderUnavailable, u.Reason)
}

// ─── Gmail ───────────────────────────────────────────────────────────────────

// GmailSender sends mail through the Gmail API as the authorised user.
type GmailSender struct {
	svc *gmail.Service
}

// NewGmailSender loads the OAuth client secrets and the stored token and
// builds a Gmail client. Refreshed tokens are written back to tokenPath.
func NewGmailSender(ctx context.Context, credentialsPath, tokenPath string, log *zap.Logger) (*GmailSender, error) {
	cfg, err := loadOAuthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (run `careeragent gmail-auth` first)", ErrSenderUnavailable, err)
	}

	ts := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok.AccessToken,
		log:  log.Named("gmail"),
	}
	svc, err := gmail.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts)))
	if err != nil {
		return nil, fmt.Errorf("gmail client: %w", err)
	}
	return &GmailSender{svc: svc}, nil
}

// Send encodes m as an RFC 2822 message and submits it.
func (g *GmailSender) Send(ctx context.Context, m Message) error {
	raw := base64.URLEncoding.EncodeToString(buildMIME(m))
	if _, err := g.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

func buildMIME(m Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// ─── OAuth plumbing ──────────────────────────────────────────────────────────

func loadOAuthConfig(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials: %v", ErrSenderUnavailable, err)
	}
	cfg, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// savingTokenSource persists every new access token it sees.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.log.Warn("could not persist refreshed token", zap.Error(err))
		}
	}
	return tok, nil
}

// Authorize runs the interactive consent flow: it prints the consent URL
// to out, reads the authorisation code from in and stores the token.
func Authorize(ctx context.Context, credentialsPath, tokenPath string, in io.Reader, out io.Writer) error {
	cfg, err := loadOAuthConfig(credentialsPath)
	if err != nil {
		return err
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}

	url := cfg.AuthCodeURL("careeragent", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL in a browser and paste the authorisation code:\n\n%s\n\ncode: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("no authorisation code given")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := saveToken(tokenPath, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintf(out, "token saved to %s\n", tokenPath)
	return nil
}
