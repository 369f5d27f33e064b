package config

const (
	defaultDataDir             = "data"
	defaultLogDirName          = "logs"
	defaultProcessedAlbumsName = "processed_albums.txt"
	defaultNavidromeTimeout    = 30
	defaultSpotifyAPIBaseURL   = "https://api.spotify.com/v1/"
	defaultSpotifyTokenURL     = "https://accounts.spotify.com/api/token"
	defaultSpotifyTimeout      = 15
	defaultWebBind             = "0.0.0.0:3333"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Navidrome: Navidrome{
			Timeout: defaultNavidromeTimeout,
		},
		Spotify: Spotify{
			APIBaseURL: defaultSpotifyAPIBaseURL,
			TokenURL:   defaultSpotifyTokenURL,
			Timeout:    defaultSpotifyTimeout,
		},
		Web: Web{
			Bind:          defaultWebBind,
			APIKeyEnabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
