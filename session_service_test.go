package authkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyunsoolee0506/authkit/kv"
	"github.com/hyunsoolee0506/authkit/password"
)

func newTestSessionService(t *testing.T) (*SessionService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	return &SessionService{
		sessions: kv.NewSessionStore(kv.NewRedisStore(client, "")),
		users:    newFakeUsers(),
		hasher:   hasher,
		ttl:      time.Hour,
	}, mr
}

func TestSessionLoginAndResolve(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sid, err := svc.Login(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if sid == "" {
		t.Fatal("empty session id")
	}

	record, err := svc.Session(ctx, sid)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if record.UserID != id || record.Nickname != "alice" {
		t.Fatalf("record = %+v", record)
	}
}

func TestSessionLoginFailures(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
	if _, err := svc.Login(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestSessionSecondLoginEvictsFirst(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := svc.Login(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := svc.Login(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if _, err := svc.Session(ctx, first); !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("evicted session: got %v, want ErrSessionRejected", err)
	}
	if _, err := svc.Session(ctx, second); err != nil {
		t.Fatalf("live session failed: %v", err)
	}
}

func TestSessionLogout(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	sid, err := svc.Login(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	existed, err := svc.Logout(ctx, sid)
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if !existed {
		t.Fatal("first logout should report a destroyed session")
	}

	existed, err = svc.Logout(ctx, sid)
	if err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if existed {
		t.Fatal("second logout should report already logged out")
	}

	if _, err := svc.Session(ctx, sid); !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("post-logout session: got %v, want ErrSessionRejected", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	svc, mr := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Nickname: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	sid, err := svc.Login(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, err := svc.Session(ctx, sid); !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("expired session: got %v, want ErrSessionRejected", err)
	}
}
