// utils/firebase.go
package utils

import (
	"context"
	"log"

	"courtpilot/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. Outcome
// pushes are optional: with no service account configured, FCMClient stays
// nil and the notifier becomes a no-op.
func FirebaseInit() {
	if config.AppConfig.FirebaseServiceAccountFile == "" {
		log.Println("firebase: no service account configured, outcome pushes disabled")
		return
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseServiceAccountFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Messaging client: %v", err)
	}

	FCMClient = client
}
