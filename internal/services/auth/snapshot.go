package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

const snapshotKeyPrefix = "session:snapshot:"

// SnapshotService resolves the session snapshot for an authenticated Clerk
// user. The user record is loaded once per token lifetime: Redis holds the
// projected snapshot with a short TTL and singleflight collapses concurrent
// loads for the same user. Identity mutations must call Invalidate so the
// next request re-reads the record.
type SnapshotService struct {
	db    *gorm.DB
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewSnapshotService(db *gorm.DB, redisClient *redis.Client, ttl time.Duration) *SnapshotService {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SnapshotService{
		db:    db,
		redis: redisClient,
		ttl:   ttl,
	}
}

type snapshotEnvelope struct {
	Snapshot access.SessionSnapshot `json:"snapshot"`
	UserID   uint                   `json:"user_id"`
}

// Load returns the snapshot and local user record for a Clerk user ID.
func (s *SnapshotService) Load(ctx context.Context, clerkUserID string) (access.SessionSnapshot, *models.User, error) {
	if cached, ok := s.fromCache(ctx, clerkUserID); ok {
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, cached.UserID).Error; err == nil {
			return cached.Snapshot, &user, nil
		}
		// Cached row vanished; fall through to a full load.
	}

	result, err, _ := s.group.Do(clerkUserID, func() (any, error) {
		var user models.User
		err := s.db.WithContext(ctx).Where("clerk_id = ?", clerkUserID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load user record: %w", err)
		}

		snapshot := user.Snapshot()
		s.toCache(ctx, clerkUserID, snapshotEnvelope{Snapshot: snapshot, UserID: user.ID})
		return &user, nil
	})
	if err != nil {
		return access.SessionSnapshot{}, nil, err
	}

	user := result.(*models.User)
	return user.Snapshot(), user, nil
}

// Invalidate drops the cached snapshot after a user mutation.
func (s *SnapshotService) Invalidate(ctx context.Context, clerkUserID string) {
	if s.redis == nil || clerkUserID == "" {
		return
	}
	if err := s.redis.Del(ctx, snapshotKeyPrefix+clerkUserID).Err(); err != nil {
		fiberlog.Warnf("Failed to invalidate session snapshot for %s: %v", clerkUserID, err)
	}
}

func (s *SnapshotService) fromCache(ctx context.Context, clerkUserID string) (snapshotEnvelope, bool) {
	if s.redis == nil {
		return snapshotEnvelope{}, false
	}

	data, err := s.redis.Get(ctx, snapshotKeyPrefix+clerkUserID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			fiberlog.Debugf("Snapshot cache read failed for %s: %v", clerkUserID, err)
		}
		return snapshotEnvelope{}, false
	}

	var envelope snapshotEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return snapshotEnvelope{}, false
	}
	return envelope, true
}

func (s *SnapshotService) toCache(ctx context.Context, clerkUserID string, envelope snapshotEnvelope) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, snapshotKeyPrefix+clerkUserID, data, s.ttl).Err(); err != nil {
		fiberlog.Debugf("Snapshot cache write failed for %s: %v", clerkUserID, err)
	}
}
