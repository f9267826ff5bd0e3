package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/internal/console/store/drivers/sqlite"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

type sentMail struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// mailerStub records outgoing mail, or refuses delivery when fail is set.
type mailerStub struct {
	mu   sync.Mutex
	fail bool
	Sent []sentMail
}

func (m *mailerStub) Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return context.DeadlineExceeded
	}
	m.Sent = append(m.Sent, sentMail{To: to, Subject: subject, HTMLBody: htmlBody, TextBody: textBody})
	return nil
}

var mailTokenRE = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

// lastToken extracts the opaque token from the most recent email. Emails are
// the only place raw tokens appear, so tests fish them out like a recipient
// would.
func (m *mailerStub) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Sent)
	match := mailTokenRE.FindStringSubmatch(m.Sent[len(m.Sent)-1].TextBody)
	require.Len(t, match, 2)
	return match[1]
}

func seedClient(t *testing.T, st store.Store, name, email string) domain.ClientAccount {
	t.Helper()

	slug, err := domain.SanitizeAgentSlug(name)
	require.NoError(t, err)

	now := time.Now().UTC()
	client := domain.ClientAccount{
		ID:           idx.New().String(),
		Name:         name,
		ContactEmail: email,
		AgentSlug:    slug,
		Widget:       domain.DefaultWidgetConfig(),
		Status:       domain.ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), client))
	return client
}

func seedUser(t *testing.T, st store.Store, email, password, clientID string, role domain.Role) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		ClientID:     clientID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))

	if role != domain.RoleNone {
		require.NoError(t, st.Users().UpsertRoleRecord(context.Background(), domain.RoleRecord{
			UserID:   user.ID,
			Role:     role,
			ClientID: clientID,
		}))
	}
	return user
}
