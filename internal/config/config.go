package config

import (
	"fmt"
	"time"

	"github.com/AnimationBenoit/mygrowverse/shared/auth"
	"github.com/AnimationBenoit/mygrowverse/shared/envconfig"
)

const (
	DataStoreFirestore = "firestore"
	DataStoreMemory    = "memory"
)

type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string `validate:"required"`
	DataStore    string `validate:"required,oneof=firestore memory"`
	LogLevel     string `validate:"omitempty,oneof=debug info warn warning error"`
	// CredentialsFile is a service account key used by the Google clients; empty means default credentials.
	CredentialsFile string
	Auth            AuthConfig
	Firestore       FirestoreConfig
	Assets          AssetsConfig
	Game            GameConfig
}

type AuthConfig struct {
	Mode     string `validate:"required,oneof=firebase noop"`
	JWKSURL  string
	Audience string
	Issuer   string
}

type FirestoreConfig struct {
	EmulatorHost string
	Database     string
}

type AssetsConfig struct {
	Bucket       string
	SignedURLTTL time.Duration `validate:"gt=0"`
}

type GameConfig struct {
	QuizBankPath   string
	DayMarkerPath  string
	Timezone       string        `validate:"required"`
	SessionTimeout time.Duration `validate:"gt=0"`
}

// Location resolves the game timezone used for day boundaries.
func (g GameConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("GAME_TIMEZONE: %w", err)
	}
	return loc, nil
}

func Load() (Config, error) {
	signedURLTTL, err := envconfig.GetDuration("ASSETS_SIGNED_URL_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	game, err := LoadGame()
	if err != nil {
		return Config{}, err
	}

	projectID := envconfig.Get("GCP_PROJECT_ID", "mygrowverse-dev")
	cfg := Config{
		Port:            envconfig.Get("PORT", "8080"),
		GCPProjectID:    projectID,
		DataStore:       envconfig.Get("DATASTORE", DataStoreFirestore),
		LogLevel:        envconfig.Get("LOG_LEVEL", "info"),
		CredentialsFile: envconfig.Get("GCP_CREDENTIALS_FILE", ""),
		Auth: AuthConfig{
			Mode:     envconfig.Get("AUTH_MODE", string(auth.ModeFirebase)),
			JWKSURL:  envconfig.Get("FIREBASE_JWKS_URL", auth.DefaultFirebaseJWKSURL),
			Audience: envconfig.Get("FIREBASE_AUDIENCE", projectID),
			Issuer:   envconfig.Get("FIREBASE_ISSUER", "https://securetoken.google.com/"+projectID),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
			Database:     envconfig.Get("FIRESTORE_DATABASE", "(default)"),
		},
		Assets: AssetsConfig{
			Bucket:       envconfig.Get("ASSETS_BUCKET", ""),
			SignedURLTTL: signedURLTTL,
		},
		Game: game,
	}
	return cfg, envconfig.Validate(cfg)
}

// LoadGame reads only the game settings, for tools that never serve traffic.
func LoadGame() (GameConfig, error) {
	sessionTimeout, err := envconfig.GetDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	if err != nil {
		return GameConfig{}, err
	}
	game := GameConfig{
		QuizBankPath:   envconfig.Get("QUIZ_BANK_PATH", ""),
		DayMarkerPath:  envconfig.Get("DAYMARKER_PATH", "data/daymarkers.db"),
		Timezone:       envconfig.Get("GAME_TIMEZONE", "UTC"),
		SessionTimeout: sessionTimeout,
	}
	return game, envconfig.Validate(game)
}
