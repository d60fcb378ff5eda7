package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Компоненты с собственными лог-файлами
const (
	ComponentEditor = "editor"
	ComponentAPI    = "api"
	ComponentCache  = "cache"
)

// LoggerManager хранит логгеры компонентов. Новые логгеры получают
// опции логгера по умолчанию (см. InitDefaultLogger).
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

func NewLoggerManager() *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger)}
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}
	logger, err := NewLogger(component, getDefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания логгера %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер; если файл не открылся, пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	opts := getDefaultOptions()
	opts.Dir = ""
	fallback, _ := NewLogger(component, opts)
	return fallback
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированный список компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни уже созданного логгера компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	logger, exists := lm.loggers[component]
	lm.mu.Unlock()

	if !exists {
		return fmt.Errorf("логгер компонента %s не найден", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

func GetEditorLogger() *Logger { return GetLoggerManager().MustGetLogger(ComponentEditor) }

func GetAPILogger() *Logger { return GetLoggerManager().MustGetLogger(ComponentAPI) }

func GetCacheLogger() *Logger { return GetLoggerManager().MustGetLogger(ComponentCache) }
