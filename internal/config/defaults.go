package config

const (
	defaultConfigPath            = "~/.config/ytscribe/config.toml"
	defaultLogDir                = "~/.local/share/ytscribe/logs"
	defaultStateDir              = "~/.local/share/ytscribe"
	defaultCredentialEnvVar      = "CLARIFAI_PAT"
	defaultSecretsFile           = "~/.config/ytscribe/secrets.toml"
	defaultDotenvFile            = ".env"
	defaultClarifaiBaseURL       = "https://api.clarifai.com"
	defaultClarifaiTimeout       = 120
	defaultModel                 = "Llama2-7b-chat"
	defaultFetcherBinary         = "yt-dlp"
	defaultFetcherLanguage       = "en"
	defaultSleepSubtitlesSeconds = 1
	defaultFetcherTimeout        = 120
	defaultBind                  = "127.0.0.1:8501"
	defaultSessionTTLMinutes     = 120
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:  defaultTempDir(),
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Credentials: Credentials{
			EnvVar:      defaultCredentialEnvVar,
			SecretsFile: defaultSecretsFile,
			DotenvFile:  defaultDotenvFile,
		},
		Clarifai: Clarifai{
			BaseURL:        defaultClarifaiBaseURL,
			TimeoutSeconds: defaultClarifaiTimeout,
			DefaultModel:   defaultModel,
		},
		Fetcher: Fetcher{
			Binary:                defaultFetcherBinary,
			Language:              defaultFetcherLanguage,
			SleepSubtitlesSeconds: defaultSleepSubtitlesSeconds,
			TimeoutSeconds:        defaultFetcherTimeout,
		},
		Server: Server{
			Bind:              defaultBind,
			SessionTTLMinutes: defaultSessionTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
