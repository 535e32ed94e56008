package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
)

type MembershipRepository interface {
	// GroupOf - group the user currently plays in.
	GroupOf(ctx context.Context, userID string) (string, error)
	// Claim - binds the user to the group unless the user is already bound somewhere.
	Claim(ctx context.Context, userID, groupID string) (bool, error)
	// Release - unbinds the user only while the membership still points at groupID.
	Release(ctx context.Context, userID, groupID string) error
	Members(ctx context.Context, groupID string) ([]string, error)
	ReleaseGroup(ctx context.Context, groupID string) error
}

// KEYS[1] member key, KEYS[2] group set, ARGV[1] group id, ARGV[2] user id
var claimScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX") then
	redis.call("SADD", KEYS[2], ARGV[2])
	return 1
end
return 0
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("SREM", KEYS[2], ARGV[2])
	return 1
end
redis.call("SREM", KEYS[2], ARGV[2])
return 0
`)

type dbMembership struct {
	client *redis.Client
}

func NewMembershipRepository(client *redis.Client) MembershipRepository {
	return &dbMembership{
		client: client,
	}
}

func memberKey(userID string) string {
	return "member:" + userID
}

func groupMembersKey(groupID string) string {
	return "group:" + groupID + ":members"
}

func (that *dbMembership) GroupOf(ctx context.Context, userID string) (string, error) {
	groupID, err := that.client.Get(ctx, memberKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrMemberNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get membership: %w", err)
	}

	return groupID, nil
}

func (that *dbMembership) Claim(ctx context.Context, userID, groupID string) (bool, error) {
	claimed, err := claimScript.Run(ctx, that.client,
		[]string{memberKey(userID), groupMembersKey(groupID)}, groupID, userID).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim membership: %w", err)
	}

	return claimed == 1, nil
}

func (that *dbMembership) Release(ctx context.Context, userID, groupID string) error {
	err := releaseScript.Run(ctx, that.client,
		[]string{memberKey(userID), groupMembersKey(groupID)}, groupID, userID).Err()
	if err != nil {
		return fmt.Errorf("failed to release membership: %w", err)
	}

	return nil
}

func (that *dbMembership) Members(ctx context.Context, groupID string) ([]string, error) {
	members, err := that.client.SMembers(ctx, groupMembersKey(groupID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}

	return members, nil
}

func (that *dbMembership) ReleaseGroup(ctx context.Context, groupID string) error {
	members, err := that.Members(ctx, groupID)
	if err != nil {
		return err
	}

	for _, userID := range members {
		if err = that.Release(ctx, userID, groupID); err != nil {
			return err
		}
	}

	if err = that.client.Del(ctx, groupMembersKey(groupID)).Err(); err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}

	return nil
}
