package config

import (
	"os"
	"strconv"
)

// Config holds all externally supplied settings for the bot.
// Every value has a default so the server can boot in development
// without a full environment.
type Config struct {
	Port string

	// Meta WhatsApp Cloud API
	VerifyToken     string // must match the token configured in Meta
	WhatsAppToken   string
	PhoneNumberID   string
	AppSecret       string // for X-Hub-Signature-256 validation (optional)
	GraphAPIVersion string

	// Business info
	BusinessName string
	City         string
	HoursText    string
	PlanText     string
	PromosText   string
	MenuImageURL string

	// Location pin
	MapsLat     float64
	MapsLng     float64
	MapsName    string
	MapsAddress string
	MapsURL     string

	// Storage
	UseMemoryStore bool
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		VerifyToken:     getEnv("VERIFY_TOKEN", "wayra123"),
		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		PhoneNumberID:   os.Getenv("PHONE_NUMBER_ID"),
		AppSecret:       os.Getenv("WHATSAPP_APP_SECRET"),
		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v17.0"),

		BusinessName: getEnv("BUSINESS_NAME", "Wayra Brew Garten"),
		City:         getEnv("CITY", "Ibarra"),
		HoursText:    getEnv("HOURS_TEXT", "Jue–Vie 18h–23h30\nSáb 12h–23h30\nDom 12h30–19h00"),
		PlanText: getEnv("PLAN_WAYRA_TEXT",
			"PLAN WAYRA: todo a $2. Jue–Vie 18h–23h30, Sáb 12h–23h30, Dom 12h30–19h00"),
		PromosText: getEnv("PROMOS_TEXT",
			"Esta semana:\n• 3 pintas por $10\n• Alitas + pinta $7.50\n• Pregunta por nuestras ediciones especiales"),
		MenuImageURL: os.Getenv("MENU_IMAGE_URL"),

		MapsLat:     getEnvFloat("MAPS_LAT", 0),
		MapsLng:     getEnvFloat("MAPS_LNG", 0),
		MapsName:    getEnv("MAPS_NAME", "Wayra Brew Garten"),
		MapsAddress: getEnv("MAPS_ADDRESS", "Ibarra, Ecuador"),
		MapsURL:     os.Getenv("MAPS_URL"),

		UseMemoryStore: os.Getenv("USE_MEMORY_STORE") == "true",
	}
}

// HasLocationPin reports whether real coordinates were configured.
func (c *Config) HasLocationPin() bool {
	return c.MapsLat != 0 && c.MapsLng != 0
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
