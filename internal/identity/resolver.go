package identity

import (
	"context"
	"time"

	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/store"
)

type Identity struct {
	UserID string
	Name   string
	Gender Gender
	Owner  bool
}

type UserInfoSource interface {
	UserInfo(ctx context.Context, userID string) (messenger.UserInfo, error)
}

type Resolver struct {
	ownerID   string
	ownerName string
	profiles  store.ProfileStore
	source    UserInfoSource
	logger    logger.Logger
	now       func() time.Time
}

func NewResolver(ownerID, ownerName string, profiles store.ProfileStore, source UserInfoSource, log logger.Logger) *Resolver {
	return &Resolver{
		ownerID:   ownerID,
		ownerName: ownerName,
		profiles:  profiles,
		source:    source,
		logger:    log,
		now:       time.Now,
	}
}

func (r *Resolver) IsOwner(userID string) bool {
	return userID == r.ownerID
}

// Resolve never fails: any lookup problem ends in FallbackName.
func (r *Resolver) Resolve(ctx context.Context, userID string) Identity {
	if r.IsOwner(userID) {
		return Identity{UserID: userID, Name: r.ownerName, Gender: Boy, Owner: true}
	}

	if p, ok := r.profiles.Get(userID); ok && IsValidName(p.Name) {
		gender := Gender(p.Gender)
		if gender == "" {
			gender = InferGender(p.Name)
		}
		return Identity{UserID: userID, Name: p.Name, Gender: gender}
	}

	name := r.lookupName(ctx, userID)
	gender := InferGender(name)
	if name != FallbackName {
		err := r.profiles.Put(ctx, store.Profile{
			UserID:   userID,
			Name:     name,
			Gender:   string(gender),
			LastSeen: r.now(),
		})
		if err != nil {
			r.logger.WithError(err).WithField("user_id", userID).Warn("Failed to persist profile")
		}
	}
	return Identity{UserID: userID, Name: name, Gender: gender}
}

func (r *Resolver) lookupName(ctx context.Context, userID string) string {
	if r.source == nil {
		return FallbackName
	}
	info, err := r.source.UserInfo(ctx, userID)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Debug("User info lookup failed")
		return FallbackName
	}
	return PickName(info)
}

// PickName walks name, first name, alternate name and vanity in that order.
func PickName(info messenger.UserInfo) string {
	for _, candidate := range []string{info.Name, info.FirstName, info.AlternateName} {
		if IsValidName(candidate) {
			return candidate
		}
	}
	if v := info.Vanity; v != "" && !isNumeric(v) && !containsFold(v, "facebook") {
		return capitalize(v)
	}
	return FallbackName
}
