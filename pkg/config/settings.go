package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DotEnvFile is read from the repository root when it exists.
const DotEnvFile = ".env"

// envKeys maps recognised environment variables to settings keys.
var envKeys = map[string]string{
	"KIBANA_URL":      "kibana_url",
	"ELASTIC_API_KEY": "elastic_api_key",
	"ELASTIC_SPACE":   "elastic_space",
	"DAC_TIMEOUT":     "timeout",
}

// Settings holds the backend connection parameters for one command.
type Settings struct {
	KibanaURL     string        `koanf:"kibana_url" env:"KIBANA_URL" validate:"required,url"`
	ElasticAPIKey string        `koanf:"elastic_api_key" env:"ELASTIC_API_KEY" validate:"required"`
	ElasticSpace  string        `koanf:"elastic_space" env:"ELASTIC_SPACE" validate:"required,space"`
	Timeout       time.Duration `koanf:"timeout" env:"DAC_TIMEOUT" validate:"gt=0"`
}

// Options controls Load.
type Options struct {
	// Root is the repository root holding the optional .env file.
	Root string
}

// Load reads settings from defaults, <root>/.env and the environment. The
// result is not validated yet: a customer may still supply the Kibana URL.
func Load(opts Options) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"elastic_space": models.DefaultSpace,
		"timeout":       kibana.DefaultTimeout.String(),
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	dotEnv, err := readDotEnv(opts.Root)
	if err != nil {
		return nil, err
	}
	if len(dotEnv) > 0 {
		logger.Debug().Int("keys", len(dotEnv)).Msg("Loaded .env")
		if err := k.Load(confmap.Provider(dotEnv, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load .env")
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
	}

	logger.Debug().
		Str("kibana_url", s.KibanaURL).
		Str("space", s.ElasticSpace).
		Dur("timeout", s.Timeout).
		Bool("api_key_set", s.ElasticAPIKey != "").
		Msg("Settings loaded")

	return &s, nil
}

// envValue keeps recognised, non-empty variables.
func envValue(key, value string) (string, interface{}) {
	name, ok := envKeys[key]
	if !ok || value == "" {
		return "", nil
	}
	return name, value
}

func readDotEnv(root string) (map[string]interface{}, error) {
	if root == "" {
		root = "."
	}
	path := filepath.Join(root, DotEnvFile)

	values, err := godotenv.Read(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot read .env").
			WithDetail("path", path)
	}

	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		if name, ok := envKeys[key]; ok && value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// ForCustomer returns a copy with the customer's overrides applied.
func (s Settings) ForCustomer(cfg *models.CustomerConfig) Settings {
	if cfg == nil {
		return s
	}
	if cfg.KibanaURL != "" {
		s.KibanaURL = cfg.KibanaURL
	}
	if cfg.ElasticSpace != "" {
		s.ElasticSpace = cfg.ElasticSpace
	}
	return s
}

// Validate checks that the settings can reach a backend. Every problem is
// reported by its environment variable name.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, problemFor(fe))
	}
	return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
		WithDetail("problems", problems)
}

// KibanaOptions returns the client options for these settings.
func (s Settings) KibanaOptions() kibana.Options {
	return kibana.Options{
		KibanaURL: s.KibanaURL,
		Space:     s.ElasticSpace,
		APIKey:    s.ElasticAPIKey,
		Timeout:   s.Timeout,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	if err := v.RegisterValidation("space", func(fl validator.FieldLevel) bool {
		return models.ValidSpace(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func problemFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is not set", fe.Field())
	case "url":
		return fmt.Sprintf("%s %q is not a valid URL", fe.Field(), fe.Value())
	case "space":
		return fmt.Sprintf("%s %q is not a valid space id", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	default:
		return fmt.Sprintf("%s failed %q check", fe.Field(), fe.Tag())
	}
}
