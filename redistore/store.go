package redistore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is an exported constant or variable used by the account store.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateUsername is an exported constant or variable used by the account store.
var ErrDuplicateUsername = errors.New("username already indexed")

// ErrDuplicateEmail is an exported constant or variable used by the account store.
var ErrDuplicateEmail = errors.New("email already indexed")

// ErrInsufficientBalance is an exported constant or variable used by the account store.
var ErrInsufficientBalance = errors.New("balance floor violation")

// ErrRedisUnavailable is an exported constant or variable used by the account store.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldSalt         = "salt"
	fieldResetKeyHash = "reset_key_hash"
	fieldReferralCode = "referral_code"
	fieldImage        = "image"
	fieldBalance      = "balance"
	fieldDeposits     = "deposits"
	fieldWithdrawals  = "withdrawals"
	fieldReferrals    = "referrals"
	fieldCreatedAt    = "created_at"
)

const (
	adjustStatusNotFound     int64 = 0
	adjustStatusApplied      int64 = 1
	adjustStatusInsufficient int64 = 2
)

const adjustBalanceScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return {0, 0}
end
local current = tonumber(redis.call("HGET", KEYS[1], "balance") or "0")
local delta = tonumber(ARGV[1])
local allow_negative = tonumber(ARGV[2])
local next = current + delta
if allow_negative == 0 and next < 0 then
  return {2, current}
end
redis.call("HSET", KEYS[1], "balance", next)
return {1, next}
`

var adjustBalanceLua = redis.NewScript(adjustBalanceScript)

const incrementCounterScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return {0, 0}
end
local value = redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
return {1, value}
`

var incrementCounterLua = redis.NewScript(incrementCounterScript)

// Record is the persisted shape of one account. Ledger fields are int64 so
// mutations map onto native Redis integer operations.
type Record struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Salt         string
	ResetKeyHash string
	ReferralCode string
	Image        string
	Balance      int64
	Deposits     int64
	Withdrawals  int64
	Referrals    int64
	CreatedAt    int64
}

// Candidate is the per-account slice of state the reset verification path
// reads for each outstanding reset.
type Candidate struct {
	AccountID    string
	Salt         string
	ResetKeyHash string
}

// Store is a Redis-backed account record store with SETNX-indexed username
// and email uniqueness and Lua-scripted ledger mutations.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Store] backed by the given Redis client. prefix sets the
// Redis key namespace.
func New(redis redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "acct"
	}
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) recordKey(id string) string {
	return s.prefix + ":rec:" + id
}

// Index keys are case-folded so uniqueness is case-insensitive; the record
// keeps the username and email as registered.
func (s *Store) usernameKey(username string) string {
	return s.prefix + ":user:" + strings.ToLower(username)
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + strings.ToLower(email)
}

func (s *Store) resetsKey() string {
	return s.prefix + ":resets"
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByID(ctx context.Context, id string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.recordKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return decodeRecord(id, fields)
}

// FindByUsername describes the findbyusername operation and its observable behavior.
//
// FindByUsername may return an error when input validation, dependency calls, or security checks fail.
// FindByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByUsername(ctx context.Context, username string) (*Record, error) {
	return s.findByIndex(ctx, s.usernameKey(username))
}

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByEmail(ctx context.Context, email string) (*Record, error) {
	return s.findByIndex(ctx, s.emailKey(email))
}

func (s *Store) findByIndex(ctx context.Context, indexKey string) (*Record, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.FindByID(ctx, id)
}

// Insert assigns a fresh id to rec, claims the username and email indexes,
// and persists the record. A lost username claim returns
// [ErrDuplicateUsername]; a lost email claim releases the username index and
// returns [ErrDuplicateEmail].
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	rec.ID = uuid.NewString()

	ok, err := s.redis.SetNX(ctx, s.usernameKey(rec.Username), rec.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrDuplicateUsername
	}

	ok, err = s.redis.SetNX(ctx, s.emailKey(rec.Email), rec.ID, 0).Result()
	if err != nil {
		_ = s.redis.Del(ctx, s.usernameKey(rec.Username)).Err()
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		_ = s.redis.Del(ctx, s.usernameKey(rec.Username)).Err()
		return ErrDuplicateEmail
	}

	if err := s.redis.HSet(ctx, s.recordKey(rec.ID), encodeRecord(rec)).Err(); err != nil {
		_, _ = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.usernameKey(rec.Username))
			pipe.Del(ctx, s.emailKey(rec.Email))
			return nil
		})
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Save rewrites the credential and profile fields of an existing record. It
// does not touch ledger fields or the uniqueness indexes.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	exists, err := s.redis.Exists(ctx, s.recordKey(rec.ID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	fields := map[string]interface{}{
		fieldPasswordHash: rec.PasswordHash,
		fieldSalt:         rec.Salt,
		fieldResetKeyHash: rec.ResetKeyHash,
		fieldImage:        rec.Image,
	}
	if err := s.redis.HSet(ctx, s.recordKey(rec.ID), fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// UpdateUsername claims the new username index, rewrites the record field,
// and releases the old index in one transaction. A lost claim returns
// [ErrDuplicateUsername] with the stored record unchanged.
func (s *Store) UpdateUsername(ctx context.Context, id, oldUsername, newUsername string) error {
	exists, err := s.redis.Exists(ctx, s.recordKey(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	// A case-only rename keeps the same index key; just rewrite the field.
	if strings.EqualFold(oldUsername, newUsername) {
		if err := s.redis.HSet(ctx, s.recordKey(id), fieldUsername, newUsername).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil
	}

	ok, err := s.redis.SetNX(ctx, s.usernameKey(newUsername), id, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return ErrDuplicateUsername
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(id), fieldUsername, newUsername)
		pipe.Del(ctx, s.usernameKey(oldUsername))
		return nil
	})
	if err != nil {
		_ = s.redis.Del(ctx, s.usernameKey(newUsername)).Err()
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// DeleteByID removes the record, both uniqueness indexes, and any pending
// reset membership. The bool reports whether a record existed.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	rec, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(id))
		pipe.Del(ctx, s.usernameKey(rec.Username))
		pipe.Del(ctx, s.emailKey(rec.Email))
		pipe.SRem(ctx, s.resetsKey(), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return true, nil
}

// AdjustBalance applies a signed delta to the stored balance through a Lua
// compare-and-increment, so the floor check and the write are one atomic
// server-side step. Returns the balance after the adjustment.
func (s *Store) AdjustBalance(ctx context.Context, id string, delta int64, allowNegative bool) (int64, error) {
	allow := 0
	if allowNegative {
		allow = 1
	}

	result, err := adjustBalanceLua.Run(
		ctx,
		s.redis,
		[]string{s.recordKey(id)},
		delta,
		allow,
	).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	status, value, err := decodeScriptReply(result)
	if err != nil {
		return 0, err
	}

	switch status {
	case adjustStatusNotFound:
		return 0, ErrNotFound
	case adjustStatusApplied:
		return value, nil
	case adjustStatusInsufficient:
		return value, ErrInsufficientBalance
	default:
		return 0, fmt.Errorf("%w: unknown adjust script status", ErrRedisUnavailable)
	}
}

// IncrementCounter adds exactly one to the named counter field via HINCRBY,
// guarded by a record existence check in the same script.
func (s *Store) IncrementCounter(ctx context.Context, id, field string) (int64, error) {
	switch field {
	case fieldDeposits, fieldWithdrawals, fieldReferrals:
	default:
		return 0, fmt.Errorf("invalid counter field %q", field)
	}

	result, err := incrementCounterLua.Run(
		ctx,
		s.redis,
		[]string{s.recordKey(id)},
		field,
	).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	status, value, err := decodeScriptReply(result)
	if err != nil {
		return 0, err
	}
	if status == adjustStatusNotFound {
		return 0, ErrNotFound
	}

	return value, nil
}

// SetResetKeyHash stores the hash of an outstanding reset key and marks the
// account as having a pending reset.
func (s *Store) SetResetKeyHash(ctx context.Context, id, keyHash string) error {
	exists, err := s.redis.Exists(ctx, s.recordKey(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(id), fieldResetKeyHash, keyHash)
		pipe.SAdd(ctx, s.resetsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// ClearResetKeyHash drops the stored reset key hash and the pending-reset
// membership. Clearing an account with no pending reset is a no-op.
func (s *Store) ClearResetKeyHash(ctx context.Context, id string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(id), fieldResetKeyHash, "")
		pipe.SRem(ctx, s.resetsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// PendingResets lists every account with a reset key outstanding. Membership
// entries whose record has disappeared are dropped from the set as they are
// encountered.
func (s *Store) PendingResets(ctx context.Context) ([]Candidate, error) {
	ids, err := s.redis.SMembers(ctx, s.resetsKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Candidate{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return []Candidate{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, s.recordKey(id), fieldSalt, fieldResetKeyHash)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	candidates := make([]Candidate, 0, len(ids))
	for i, cmd := range cmds {
		values, cmdErr := cmd.Result()
		if cmdErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}
		if len(values) != 2 {
			continue
		}

		salt, _ := values[0].(string)
		keyHash, _ := values[1].(string)
		if salt == "" || keyHash == "" {
			_ = s.redis.SRem(ctx, s.resetsKey(), ids[i]).Err()
			continue
		}

		candidates = append(candidates, Candidate{
			AccountID:    ids[i],
			Salt:         salt,
			ResetKeyHash: keyHash,
		})
	}

	return candidates, nil
}

// Ping returns a point-in-time Redis availability check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func encodeRecord(rec *Record) map[string]interface{} {
	return map[string]interface{}{
		fieldUsername:     rec.Username,
		fieldEmail:        rec.Email,
		fieldPasswordHash: rec.PasswordHash,
		fieldSalt:         rec.Salt,
		fieldResetKeyHash: rec.ResetKeyHash,
		fieldReferralCode: rec.ReferralCode,
		fieldImage:        rec.Image,
		fieldBalance:      rec.Balance,
		fieldDeposits:     rec.Deposits,
		fieldWithdrawals:  rec.Withdrawals,
		fieldReferrals:    rec.Referrals,
		fieldCreatedAt:    rec.CreatedAt,
	}
}

func decodeRecord(id string, fields map[string]string) (*Record, error) {
	rec := &Record{
		ID:           id,
		Username:     fields[fieldUsername],
		Email:        fields[fieldEmail],
		PasswordHash: fields[fieldPasswordHash],
		Salt:         fields[fieldSalt],
		ResetKeyHash: fields[fieldResetKeyHash],
		ReferralCode: fields[fieldReferralCode],
		Image:        fields[fieldImage],
	}

	for _, f := range []struct {
		name string
		dst  *int64
	}{
		{fieldBalance, &rec.Balance},
		{fieldDeposits, &rec.Deposits},
		{fieldWithdrawals, &rec.Withdrawals},
		{fieldReferrals, &rec.Referrals},
		{fieldCreatedAt, &rec.CreatedAt},
	} {
		raw, ok := fields[f.name]
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt numeric field %s: %v", f.name, err)
		}
		*f.dst = v
	}

	return rec, nil
}

func decodeScriptReply(result interface{}) (int64, int64, error) {
	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return 0, 0, fmt.Errorf("%w: invalid script response", ErrRedisUnavailable)
	}

	status, ok := parts[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid script status", ErrRedisUnavailable)
	}

	var value int64
	if len(parts) > 1 {
		value, ok = parts[1].(int64)
		if !ok {
			return 0, 0, fmt.Errorf("%w: invalid script value", ErrRedisUnavailable)
		}
	}

	return status, value, nil
}
