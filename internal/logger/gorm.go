package logger

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which gorm reports a query as slow.
const slowQueryThreshold = 200 * time.Millisecond

// Gorm returns a gorm logger that writes through the global zap logger.
// Development environments log every statement; everything else only warnings.
func Gorm(env string) gormlogger.Interface {
	level := gormlogger.Warn
	if env == "development" {
		level = gormlogger.Info
	}

	writer := zap.NewStdLog(Base().Named("gorm"))
	return gormlogger.New(writer, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
