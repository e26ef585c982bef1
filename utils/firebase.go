package utils

import (
	"context"
	"errors"
	"fmt"

	"fixit/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseInit initializes the Firebase App and Messaging client.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	path := config.AppConfig.FirebaseCredentialsPath
	if path == "" {
		return nil, errors.New("firebase: FIREBASE_CREDENTIALS_PATH not set")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}

	return client, nil
}
