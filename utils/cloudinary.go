package utils

import (
	"fmt"

	"courtpilot/services/storage"

	"github.com/spf13/viper"
)

// LoadCloudinaryConfig loads the Cloudinary configuration from its own YAML
// file, falling back to environment variables.
func LoadCloudinaryConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile("utils/cloudinary.yaml")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("cloudinary.cloudName", "")
	v.SetDefault("cloudinary.apiKey", "")
	v.SetDefault("cloudinary.apiSecret", "")

	if err := v.ReadInConfig(); err != nil {
		// Environment variables may still carry the credentials.
		return v, nil
	}
	return v, nil
}

// Cloudinary initializes and returns a Cloudinary-based ArtifactStore using Viper.
// Returns (nil, nil) when no credentials are configured: screenshot uploads
// are an optional capability.
func Cloudinary() (storage.ArtifactStore, error) {
	v, err := LoadCloudinaryConfig()
	if err != nil {
		return nil, err
	}

	cloudName := v.GetString("cloudinary.cloudName")
	apiKey := v.GetString("cloudinary.apiKey")
	apiSecret := v.GetString("cloudinary.apiSecret")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, nil
	}

	store, err := storage.NewCloudinaryStore(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return store, nil
}
