package oraculum

// Configuration carries the caller-facing settings of the fact store.
type Configuration struct {
	// UserName, when set, is stamped as owner onto facts added without
	// edit principals.
	UserName string `yaml:"user_name" envconfig:"ORACULUM_USER_NAME"`
}
