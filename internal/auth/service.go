// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package auth

import (
	"context"
	"errors"
	"math/rand"

	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// Error codes for account operations.
const (
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeNameTaken          = "AUTH_NAME_TAKEN"
	CodeInvalidName        = "AUTH_INVALID_NAME"
)

// dummyPasswordHash is verified when a name does not exist so that lookup
// misses and password mismatches take the same time. It never matches any
// password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Config holds the starting state for new characters.
type Config struct {
	HomeRoomID    string
	StartingMoney int
	// BaseHP is the hit point base before the constitution modifier.
	BaseHP int
}

// DefaultConfig returns the stock character creation values.
func DefaultConfig(homeRoomID string) Config {
	return Config{
		HomeRoomID:    homeRoomID,
		StartingMoney: 50,
		BaseHP:        12,
	}
}

// Dice returns a uniform value in [0, n). Injected so tests can pin
// attribute rolls.
type Dice func(n int) int

// Service creates and authenticates player characters.
type Service struct {
	players world.PlayerRepository
	tx      world.Transactor
	hasher  PasswordHasher
	cfg     Config
	dice    Dice
}

// NewService creates an auth service.
func NewService(players world.PlayerRepository, tx world.Transactor, hasher PasswordHasher, cfg Config) *Service {
	return &Service{
		players: players,
		tx:      tx,
		hasher:  hasher,
		cfg:     cfg,
		dice:    rand.Intn,
	}
}

// SetDice replaces the roll source. Test hook.
func (s *Service) SetDice(d Dice) {
	s.dice = d
}

// roll3d6 sums three six-sided dice, yielding an ability score in [3, 18].
func (s *Service) roll3d6() int {
	return s.dice(6) + s.dice(6) + s.dice(6) + 3
}

// Signup creates a new character: validated name, hashed password, rolled
// attributes, and the configured starting room, money, and hit points.
func (s *Service) Signup(ctx context.Context, name, password string) (*world.Player, error) {
	if err := world.ValidatePlayerName(name); err != nil {
		return nil, oops.Code(CodeInvalidName).
			With("name", name).
			With("message", "Names are 2-32 letters with single spaces between words.").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	attrs := world.Attributes{
		Str: s.roll3d6(),
		Dex: s.roll3d6(),
		Con: s.roll3d6(),
		Int: s.roll3d6(),
		Wis: s.roll3d6(),
		Cha: s.roll3d6(),
	}
	maxHP := s.cfg.BaseHP + world.Modifier(attrs.Con)
	if maxHP < 1 {
		maxHP = 1
	}

	player := &world.Player{
		ID:           core.NewULID(),
		Name:         name,
		PasswordHash: hash,
		RoomID:       s.cfg.HomeRoomID,
		Money:        s.cfg.StartingMoney,
		HP:           maxHP,
		MaxHP:        maxHP,
		Level:        1,
		Attributes:   attrs,
		VisitedRooms: []string{s.cfg.HomeRoomID},
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		_, lookupErr := s.players.GetByName(ctx, name)
		if lookupErr == nil {
			return oops.Code(CodeNameTaken).With("name", name).With("message", "That name is already taken.").Errorf("name already taken")
		}
		if !errors.Is(lookupErr, world.ErrNotFound) {
			return oops.Code("AUTH_SIGNUP_FAILED").Wrap(lookupErr)
		}
		return s.players.Create(ctx, player)
	})
	if err != nil {
		// The unique index wins over the pre-check under concurrency.
		if errors.Is(err, world.ErrConflict) {
			return nil, oops.Code(CodeNameTaken).With("name", name).With("message", "That name is already taken.").Errorf("name already taken")
		}
		return nil, err
	}

	return player, nil
}

// Login authenticates by character name and password. Lookup misses and
// password mismatches return the same error after the same amount of work.
func (s *Service) Login(ctx context.Context, name, password string) (*world.Player, error) {
	player, lookupErr := s.players.GetByName(ctx, name)

	targetHash := dummyPasswordHash
	if lookupErr == nil {
		targetHash = player.PasswordHash
	} else if !errors.Is(lookupErr, world.ErrNotFound) {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get player by name").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && lookupErr == nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if lookupErr != nil || !valid {
		return nil, oops.Code(CodeInvalidCredentials).With("message", "Invalid name or password.").Errorf("invalid name or password")
	}

	return player, nil
}
