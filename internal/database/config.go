package database

type Config struct {
	FileName string `envconfig:"MVD_DB_FILE" default:"mvd.db"`
}
