package mlmodel

type AlgType string

const AlgTypeLogReg AlgType = "logreg"

type Config struct {
	Type AlgType `envconfig:"MVD_MODEL_TYPE" default:"logreg"`
}

func (c *Config) ModelType() AlgType {
	return c.Type
}
