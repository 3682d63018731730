package config

import "os"

func IsDebug() bool {
	return os.Getenv("LEMBREMED_DEBUG") == "1"
}
