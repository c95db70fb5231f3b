package status

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/model"
)

// Publish timeout for a single database update
const firebasePublishTimeout = 5 * time.Second

// Firebase writes snapshots into the Realtime Database under
// /tvs/<identityKey>, last write wins, so a dashboard can watch every screen
// live.
type Firebase struct {
	ref *db.Ref
	log *logrus.Entry
}

// NewFirebase connects to the Realtime Database and binds the node's ref.
func NewFirebase(ctx context.Context, cfg config.StatusConfig, identityKey string, log *logrus.Logger) (*Firebase, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{DatabaseURL: cfg.FirebaseDatabaseURL},
		option.WithCredentialsFile(cfg.FirebaseCredentialsPath),
	)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase database client failed: %w", err)
	}

	entry := log.WithField("component", "status.firebase")
	entry.WithField("key", identityKey).Info("Firebase status reporting connected")

	return &Firebase{
		ref: client.NewRef("tvs/" + identityKey),
		log: entry,
	}, nil
}

// Publish implements Reporter. Fields merge into the node's entry rather
// than replacing it so dashboard-side annotations survive.
func (f *Firebase) Publish(ctx context.Context, snap model.SupervisorSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, firebasePublishTimeout)
	defer cancel()

	update := map[string]interface{}{
		"status":      string(snap.State),
		"video_id":    snap.CurrentDescriptorID,
		"video_name":  snap.CurrentVideoName,
		"last_error":  string(snap.LastError),
		"last_update": time.Now().Format(time.RFC3339),
		"timestamp":   time.Now().Unix(),
		"transition":  snap.LastTransitionAt.Format(time.RFC3339),
	}

	if err := f.ref.Update(ctx, update); err != nil {
		return fmt.Errorf("firebase update failed: %w", err)
	}
	return nil
}
