package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds defaults read from the environment and an optional .env file
type Env struct {
	WorldsDir  string // KAREL_WORLDS_DIR
	ConfigDir  string // KAREL_CONFIG_DIR
	Profile    string // KAREL_PROFILE
	Host       string // KAREL_HOST
	Port       int    // KAREL_PORT
	NgrokToken string // NGROK_AUTHTOKEN

	// Delay and Debug override the profile when set; the --delay and
	// --debug flags override them in turn.
	Delay *float64 // KAREL_DELAY
	Debug *bool    // KAREL_DEBUG
}

// LoadEnv loads .env if present and reads the simulator environment variables
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	return Env{
		WorldsDir:  getEnvWithDefault("KAREL_WORLDS_DIR", "worlds"),
		ConfigDir:  getEnvWithDefault("KAREL_CONFIG_DIR", "configs"),
		Profile:    getEnvWithDefault("KAREL_PROFILE", "default"),
		Host:       getEnvWithDefault("KAREL_HOST", "localhost"),
		Port:       getEnvAsIntWithDefault("KAREL_PORT", 8080),
		NgrokToken: getEnvWithDefault("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN")),
		Delay:      getEnvAsFloat("KAREL_DELAY"),
		Debug:      getEnvAsBool("KAREL_DEBUG"),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s must be an integer, using %d: %v", key, defaultValue, err)
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string) *float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: %s must be a number of seconds, ignoring it: %v", key, err)
		return nil
	}
	return &f
}

func getEnvAsBool(key string) *bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: %s must be true or false, ignoring it: %v", key, err)
		return nil
	}
	return &b
}
