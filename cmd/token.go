package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/repositories"
	"github.com/urfave/cli/v3"
)

// TokenAdd stores (or replaces) a user's token record.
//
// The refresh token comes from an out-of-band authorization; an access token
// is optional since the manager refreshes on first use either way.
func (r *Runner) TokenAdd(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTokenRepository(db)

	record := &models.TokenRecord{
		UID:          cmd.String("uid"),
		AccessToken:  cmd.String("access-token"),
		RefreshToken: cmd.String("refresh-token"),
	}

	if err := repo.Save(record); err != nil {
		return fmt.Errorf("failed to store token record: %w", err)
	}

	r.logger.Info("token record stored", "uid", record.UID)
	r.writePlainln("✓ Token stored for %s", record.UID)

	return nil
}

// TokenRemove deletes a user's token record.
func (r *Runner) TokenRemove(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTokenRepository(db)
	uid := cmd.String("uid")

	if err := repo.Delete(uid); err != nil {
		return fmt.Errorf("failed to remove token record: %w", err)
	}

	r.logger.Info("token record removed", "uid", uid)
	r.writePlainln("✓ Token removed for %s", uid)

	return nil
}

// TokenList prints the stored token records with their expiry state.
func (r *Runner) TokenList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTokenRepository(db)

	records, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list token records: %w", err)
	}

	if len(records) == 0 {
		r.writePlainln("No token records stored.")
		return nil
	}

	now := time.Now()
	for _, record := range records {
		state := "valid"
		if record.Expired(now) {
			state = "expired"
		}
		r.writePlainln("%s\t%s\t%s", record.UID, state, expiryString(record))
	}

	return nil
}

func expiryString(record *models.TokenRecord) string {
	if record.ExpiresAt.IsZero() {
		return "never refreshed"
	}
	return record.ExpiresAt.Format(time.RFC3339)
}
