package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// OAuthApp holds the client registration of one OAuth provider.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type TwitterApp struct {
	OAuthApp
	// Consumer keys sign requests for accounts connected with OAuth 1.0a user tokens.
	ConsumerKey    string
	ConsumerSecret string
}

type Config struct {
	AppEnv             string
	Port               string
	PostgresURI        string
	RedisAddr          string
	RedisPassword      string
	FrontendURL        string
	BackendURL         string
	SecretKey          string
	CookieName         string
	AdminEmails        []string
	SchedulerInterval  time.Duration
	SchedulerBatchSize int
	PublishTimeout     time.Duration
	Google             OAuthApp
	Twitter            TwitterApp
	LinkedIn           OAuthApp
	Instagram          OAuthApp
	Facebook           OAuthApp
	R2                 R2
}

func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "3000")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("BACKEND_URL", "http://localhost:3000")
	v.SetDefault("COOKIE_NAME", "syncrio_session")
	v.SetDefault("SCHEDULER_INTERVAL", "60s")
	v.SetDefault("SCHEDULER_BATCH_SIZE", 50)
	v.SetDefault("PUBLISH_TIMEOUT", "5m")

	backendURL := strings.TrimRight(v.GetString("BACKEND_URL"), "/")

	return &Config{
		AppEnv:             v.GetString("APP_ENV"),
		Port:               v.GetString("PORT"),
		PostgresURI:        v.GetString("POSTGRES_URI"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		FrontendURL:        strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		BackendURL:         backendURL,
		SecretKey:          v.GetString("SECRET_KEY"),
		CookieName:         v.GetString("COOKIE_NAME"),
		AdminEmails:        splitList(v.GetString("ADMIN_EMAILS")),
		SchedulerInterval:  v.GetDuration("SCHEDULER_INTERVAL"),
		SchedulerBatchSize: v.GetInt("SCHEDULER_BATCH_SIZE"),
		PublishTimeout:     v.GetDuration("PUBLISH_TIMEOUT"),
		Google:             oauthApp(v, "GOOGLE", backendURL+"/login/callback"),
		Twitter: TwitterApp{
			OAuthApp:       oauthApp(v, "TWITTER", callbackURL(backendURL, "twitter")),
			ConsumerKey:    v.GetString("TWITTER_CONSUMER_KEY"),
			ConsumerSecret: v.GetString("TWITTER_CONSUMER_SECRET"),
		},
		LinkedIn:  oauthApp(v, "LINKEDIN", callbackURL(backendURL, "linkedin")),
		Instagram: oauthApp(v, "INSTAGRAM", callbackURL(backendURL, "instagram")),
		Facebook:  oauthApp(v, "FACEBOOK", callbackURL(backendURL, "facebook")),
		R2: R2{
			AccountID:  v.GetString("R2_ACCOUNT_ID"),
			AccessKey:  v.GetString("R2_ACCESS_KEY"),
			SecretKey:  v.GetString("R2_SECRET_KEY"),
			BucketName: v.GetString("R2_BUCKET_NAME"),
			PublicURL:  strings.TrimRight(v.GetString("R2_PUBLIC_URL"), "/"),
		},
	}
}

// IsAdmin reports whether email belongs to an app owner.
func (c Config) IsAdmin(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// YouTube shares the Google client but has its own callback.
func (c Config) YouTube() OAuthApp {
	app := c.Google
	app.RedirectURI = callbackURL(c.BackendURL, "youtube")
	return app
}

func oauthApp(v *viper.Viper, prefix, defaultRedirect string) OAuthApp {
	redirect := v.GetString(prefix + "_REDIRECT_URI")
	if redirect == "" {
		redirect = defaultRedirect
	}
	return OAuthApp{
		ClientID:     v.GetString(prefix + "_CLIENT_ID"),
		ClientSecret: v.GetString(prefix + "_CLIENT_SECRET"),
		RedirectURI:  redirect,
	}
}

func callbackURL(backendURL, platform string) string {
	return backendURL + "/api/social/" + platform + "/callback"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
