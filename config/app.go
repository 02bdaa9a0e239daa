package config

type App struct {
	Port      string `env:"APP_PORT" default:"8080"`
	JWTSecret string `env:"JWT_SECRET" default:"local_dev_secret"`
	DataDir   string `env:"DATA_DIR" default:"data"`
	SeedBooks bool   `env:"SEED_BOOKS" default:"false"`
	Env       string `env:"APP_ENV" default:"dev"`
}
