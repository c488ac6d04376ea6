package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger envuelve logrus con la configuración estándar del servicio.
type Logger struct {
	*logrus.Logger
}

// New crea el logger del servicio: salida JSON a stdout y nivel desde
// LOG_LEVEL (default info).
func New(serviceName string) *Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.AddHook(&serviceHook{service: serviceName})

	return &Logger{Logger: log}
}

// WithRequestID agrega el request id (del middleware de chi) a la entrada.
func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}

// serviceHook inyecta el nombre del servicio en cada entrada.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(e *logrus.Entry) error {
	if h.service != "" {
		e.Data["service"] = h.service
	}
	return nil
}
