package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type (
	// Config es la configuración completa de la aplicación. Se carga una vez
	// en el arranque y se pasa inmutable a cada constructor; no hay estado
	// global ambiente.
	Config struct {
		Language string `json:"language"`
		PathFile string `json:"path_file"`

		GitHub    GitHubConfig    `json:"github"`
		Gemini    GeminiConfig    `json:"gemini"`
		Diff      DiffConfig      `json:"diff"`
		Breaker   BreakerConfig   `json:"circuit_breaker"`
		Watchdog  WatchdogConfig  `json:"watchdog"`
		RateLimit RateLimitConfig `json:"rate_limit"`
		Retry     RetryConfig     `json:"retry"`
		Cache     CacheConfig     `json:"cache"`
		Metrics   MetricsConfig   `json:"metrics"`
		Publish   PublishConfig   `json:"publish"`

		// KillSwitchPath: si el archivo existe, todo comando aborta temprano.
		KillSwitchPath string `json:"kill_switch_path,omitempty"`
	}

	GitHubConfig struct {
		Token          string `json:"token,omitempty"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}

	GeminiConfig struct {
		APIKey string `json:"api_key,omitempty"`
		Model  string `json:"model"`
	}

	// DiffConfig son los presupuestos del pipeline de diff. Los valores se
	// consumen como datos; ningún componente los lee de variables globales.
	DiffConfig struct {
		TreatSVGAsText   bool    `json:"treat_svg_as_text"`
		MaxFiles         int     `json:"max_files"`
		MaxDiffBytes     int     `json:"max_diff_bytes"`
		ContextLines     int     `json:"context_lines"`
		MaxFilesPerChunk int     `json:"max_files_per_chunk"`
		MaxChunks        int     `json:"max_chunks"`
		HardTokenBudget  int     `json:"hard_token_budget"`
		SoftBudgetRatio  float64 `json:"soft_budget_ratio"`
		CharsPerToken    float64 `json:"chars_per_token"`
	}

	BreakerConfig struct {
		FailureThreshold    int    `json:"failure_threshold"`
		RecoveryTimeSeconds int    `json:"recovery_time_seconds"`
		HalfOpenMaxCalls    int    `json:"half_open_max_calls"`
		StateRoot           string `json:"state_root"`
	}

	WatchdogConfig struct {
		MaxRuntimeSeconds int `json:"max_runtime_seconds"`
	}

	RateLimitConfig struct {
		MaxAttempts   int    `json:"max_attempts"`
		WindowSeconds int    `json:"window_seconds"`
		StateRoot     string `json:"state_root"`
	}

	RetryConfig struct {
		MaxRetries     int     `json:"max_retries"`
		BackoffSeconds float64 `json:"backoff_seconds"`
	}

	CacheConfig struct {
		Enabled       bool   `json:"enabled"`
		Root          string `json:"root"`
		CommentIDRoot string `json:"comment_id_root"`
		AuditRoot     string `json:"audit_root"`
	}

	MetricsConfig struct {
		Enabled bool   `json:"enabled"`
		Root    string `json:"root"`
	}

	PublishConfig struct {
		AllowedRoles        []string `json:"allowed_roles"`
		MaxCommentChars     int      `json:"max_comment_chars"`
		ReleaseBodyMaxChars int      `json:"release_body_max_chars"`
		BackupsRoot         string   `json:"backups_root"`
		MarkerPreview       string   `json:"marker_preview"`
		MarkerKey           string   `json:"marker_key"`
	}
)

const configDirName = ".notaprensa"

// LoadConfig carga la configuración desde path. Si path es un directorio,
// busca <path>/.notaprensa/config.json y lo crea con defaults si no existe.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, "config.json")

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error al crear el directorio de configuración: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error al leer el archivo de configuración: %w", err)
	}

	cfg := defaultConfig(configPath)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error al decodificar el archivo JSON: %w", err)
	}
	cfg.PathFile = configPath
	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("la configuración cargada no es válida: %w", err)
	}

	return cfg, nil
}

func defaultConfig(path string) *Config {
	stateRoot := filepath.Join(filepath.Dir(path), "state")
	return &Config{
		Language: "en",
		PathFile: path,
		GitHub: GitHubConfig{
			TimeoutSeconds: 30,
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
		Diff: DiffConfig{
			TreatSVGAsText:   true,
			MaxFiles:         200,
			MaxDiffBytes:     10 * 1024 * 1024,
			ContextLines:     3,
			MaxFilesPerChunk: 15,
			MaxChunks:        5,
			HardTokenBudget:  6000,
			SoftBudgetRatio:  0.60,
			CharsPerToken:    4.0,
		},
		Breaker: BreakerConfig{
			FailureThreshold:    5,
			RecoveryTimeSeconds: 120,
			HalfOpenMaxCalls:    1,
			StateRoot:           filepath.Join(stateRoot, "cb"),
		},
		Watchdog: WatchdogConfig{
			MaxRuntimeSeconds: 300,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:   3,
			WindowSeconds: 600,
			StateRoot:     filepath.Join(stateRoot, "commands"),
		},
		Retry: RetryConfig{
			MaxRetries:     2,
			BackoffSeconds: 0.5,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Root:          filepath.Join(stateRoot, "cache"),
			CommentIDRoot: filepath.Join(stateRoot, "comments"),
			AuditRoot:     filepath.Join(stateRoot, "audit"),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Root:    filepath.Join(stateRoot, "metrics"),
		},
		Publish: PublishConfig{
			AllowedRoles:        []string{"OWNER", "MEMBER", "COLLABORATOR"},
			MaxCommentChars:     65000,
			ReleaseBodyMaxChars: 250000,
			BackupsRoot:         filepath.Join(stateRoot, "release_backups"),
			MarkerPreview:       "RELEASE_NOTES_PREVIEW",
			MarkerKey:           "RELEASE_NOTES_KEY",
		},
		KillSwitchPath: filepath.Join(stateRoot, "KILL"),
	}
}

func createDefaultConfig(path string) (*Config, error) {
	cfg := defaultConfig(path)
	applyEnvOverrides(cfg)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error al crear el directorio de configuración: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error al codificar la configuración por defecto: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("error al guardar la configuración por defecto: %w", err)
	}

	return cfg, nil
}

// SaveConfig persiste la configuración en su PathFile.
func SaveConfig(cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("la configuración a guardar no es válida: %w", err)
	}

	if cfg.PathFile == "" {
		return errors.New("la ruta del archivo de configuración no está definida")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error al codificar la configuración: %w", err)
	}

	if err := os.WriteFile(cfg.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error al guardar la configuración: %w", err)
	}

	return nil
}

// applyEnvOverrides deja que las credenciales vengan del entorno, útil en CI.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Language == "" {
		return errors.New("language no puede estar vacío")
	}
	if cfg.Diff.HardTokenBudget <= 0 {
		return errors.New("hard_token_budget debe ser mayor que 0")
	}
	if cfg.Diff.SoftBudgetRatio <= 0 || cfg.Diff.SoftBudgetRatio > 1 {
		return errors.New("soft_budget_ratio debe estar en (0, 1]")
	}
	if cfg.Diff.CharsPerToken <= 0 {
		return errors.New("chars_per_token debe ser mayor que 0")
	}
	if cfg.Diff.MaxFilesPerChunk <= 0 || cfg.Diff.MaxChunks <= 0 {
		return errors.New("max_files_per_chunk y max_chunks deben ser mayores que 0")
	}
	if cfg.Breaker.FailureThreshold <= 0 {
		return errors.New("failure_threshold debe ser mayor que 0")
	}
	if cfg.RateLimit.MaxAttempts <= 0 || cfg.RateLimit.WindowSeconds <= 0 {
		return errors.New("rate_limit: max_attempts y window_seconds deben ser mayores que 0")
	}
	return nil
}
