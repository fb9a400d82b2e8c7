package config

import "strings"

// AppVersion is the version of the application, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "Paperize"

// AppID is the unique application identifier used for preferences storage.
const AppID = "com.dixieflatline76.paperize"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PAPERIZE"

// LogFile is the name of the release build log file.
var LogFile = strings.ToLower(AppName) + ".log"
