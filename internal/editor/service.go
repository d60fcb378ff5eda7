// Package editor реализует прикладной слой редактирования поведений объектов.
// Сервис загружает проекты из хранилища, применяет изменения через
// object.Object, сохраняет результат и публикует события в шину.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/compat"
	"github.com/annel0/objectkit/internal/eventbus"
	"github.com/annel0/objectkit/internal/logging"
	"github.com/annel0/objectkit/internal/object"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/project"
	"github.com/annel0/objectkit/internal/serializer"
	"github.com/annel0/objectkit/internal/storage"
)

// BehaviorInfo краткое описание поведения объекта
type BehaviorInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ImportSummary итог импорта документа
type ImportSummary struct {
	Objects       int `json:"objects"`
	LegacyObjects int `json:"legacy_objects"`
}

// Service выполняет операции редактора. Операции над одним проектом
// выполняются последовательно, над разными проектами параллельно.
type Service struct {
	repo     *storage.ProjectRepository
	platform *platform.Platform
	bus      eventbus.EventBus
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option настраивает Service
type Option func(*Service)

// WithEventBus включает публикацию событий
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithMetrics включает метрики Prometheus
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo *storage.ProjectRepository, p *platform.Platform, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		platform: p,
		tracer:   otel.Tracer("objectkit/editor"),
		logger:   logging.GetEditorLogger(),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Platform возвращает платформу с зарегистрированными поведениями
func (s *Service) Platform() *platform.Platform { return s.platform }

func (s *Service) projectLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// run оборачивает операцию в span и метрики
func (s *Service) run(ctx context.Context, op, projectName string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "editor."+op,
		trace.WithAttributes(attribute.String("objectkit.project", projectName)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.observe(op, start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// withProject загружает проект под блокировкой. Если save == true и fn
// завершилась без ошибки, проект сохраняется.
func (s *Service) withProject(ctx context.Context, name string, save bool, fn func(p *project.Project) error) error {
	lock := s.projectLock(name)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.repo.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if err != nil {
		return err
	}

	if err := fn(p); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.repo.Save(ctx, p)
}

func findObject(p *project.Project, name string) (*object.Object, error) {
	obj := p.Object(name)
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	return obj, nil
}

func findBehavior(obj *object.Object, name string) (*behavior.Content, error) {
	content, ok := obj.LookupBehavior(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBehaviorNotFound, name)
	}
	return content, nil
}

// prototypeFor возвращает прототип для контента; nil для неизвестного типа
func prototypeFor(p *project.Project, content *behavior.Content) behavior.Behavior {
	return p.CurrentPlatform().GetBehavior(content.TypeName())
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventSource, eventType, payload)
	if err != nil {
		s.logger.Warn("не удалось создать событие %s: %v", eventType, err)
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.logger.Warn("не удалось опубликовать событие %s: %v", eventType, err)
	}
}

// ListProjects возвращает имена сохранённых проектов
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	var names []string
	err := s.run(ctx, "list_projects", "", func(ctx context.Context) error {
		var err error
		names, err = s.repo.List(ctx)
		return err
	})
	return names, err
}

// ListObjects возвращает имена объектов проекта в порядке документа
func (s *Service) ListObjects(ctx context.Context, projectName string) ([]string, error) {
	var names []string
	err := s.run(ctx, "list_objects", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, false, func(p *project.Project) error {
			names = p.ObjectNames()
			return nil
		})
	})
	return names, err
}

// ListBehaviors возвращает поведения объекта, отсортированные по имени
func (s *Service) ListBehaviors(ctx context.Context, projectName, objectName string) ([]BehaviorInfo, error) {
	var infos []BehaviorInfo
	err := s.run(ctx, "list_behaviors", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, false, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			names := obj.AllBehaviorNames()
			infos = make([]BehaviorInfo, 0, len(names))
			for _, name := range names {
				infos = append(infos, BehaviorInfo{Name: name, Type: obj.Behavior(name).TypeName()})
			}
			return nil
		})
	})
	return infos, err
}

// AddBehavior добавляет поведение. В отличие от object.AddNewBehavior,
// занятое имя считается ошибкой.
func (s *Service) AddBehavior(ctx context.Context, projectName, objectName, typeName, name string) (BehaviorInfo, error) {
	var info BehaviorInfo
	err := s.run(ctx, "add_behavior", projectName, func(ctx context.Context) error {
		if name == "" {
			return ErrInvalidName
		}
		return s.withProject(ctx, projectName, true, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			if obj.HasBehaviorNamed(name) {
				return fmt.Errorf("%w: %s", ErrBehaviorExists, name)
			}
			content := obj.AddNewBehavior(p, typeName, name)
			if content == nil {
				return fmt.Errorf("%w: %s", ErrUnknownBehaviorType, typeName)
			}
			info = BehaviorInfo{Name: content.Name(), Type: content.TypeName()}
			return nil
		})
	})
	if err != nil {
		return BehaviorInfo{}, err
	}

	s.logger.Info("добавлено поведение %s (%s) объекту %s/%s", name, typeName, projectName, objectName)
	s.publish(ctx, EventBehaviorAdded, BehaviorEvent{
		Project: projectName, Object: objectName, Behavior: name, Type: typeName,
	})
	return info, nil
}

// RemoveBehavior удаляет поведение объекта
func (s *Service) RemoveBehavior(ctx context.Context, projectName, objectName, name string) error {
	err := s.run(ctx, "remove_behavior", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, true, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			if _, err := findBehavior(obj, name); err != nil {
				return err
			}
			obj.RemoveBehavior(name)
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventBehaviorRemoved, BehaviorEvent{Project: projectName, Object: objectName, Behavior: name})
	return nil
}

// RenameBehavior переименовывает поведение. Переименование в то же имя
// ничего не меняет и событий не публикует.
func (s *Service) RenameBehavior(ctx context.Context, projectName, objectName, oldName, newName string) error {
	changed := false
	err := s.run(ctx, "rename_behavior", projectName, func(ctx context.Context) error {
		if newName == "" {
			return ErrInvalidName
		}
		return s.withProject(ctx, projectName, true, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			if _, err := findBehavior(obj, oldName); err != nil {
				return err
			}
			if oldName == newName {
				return nil
			}
			if !obj.RenameBehavior(oldName, newName) {
				return fmt.Errorf("%w: %s", ErrBehaviorExists, newName)
			}
			changed = true
			return nil
		})
	})
	if err != nil || !changed {
		return err
	}

	s.publish(ctx, EventBehaviorRenamed, BehaviorEvent{
		Project: projectName, Object: objectName, Behavior: newName, OldName: oldName,
	})
	return nil
}

// BehaviorProperties возвращает свойства поведения через его прототип
func (s *Service) BehaviorProperties(ctx context.Context, projectName, objectName, name string) (map[string]behavior.PropertyDescriptor, error) {
	var props map[string]behavior.PropertyDescriptor
	err := s.run(ctx, "behavior_properties", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, false, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			content, err := findBehavior(obj, name)
			if err != nil {
				return err
			}
			prototype := prototypeFor(p, content)
			if prototype == nil {
				return fmt.Errorf("%w: %s", ErrUnknownBehaviorType, content.TypeName())
			}
			props = prototype.Properties(content.Content(), p)
			return nil
		})
	})
	return props, err
}

// BehaviorSchema возвращает поля формы редактирования поведения
func (s *Service) BehaviorSchema(ctx context.Context, projectName, objectName, name string) ([]SchemaField, error) {
	props, err := s.BehaviorProperties(ctx, projectName, objectName, name)
	if err != nil {
		return nil, err
	}
	return PropertiesToSchema(props), nil
}

// UpdateBehaviorProperty меняет свойство поведения и возвращает
// обновлённые свойства.
func (s *Service) UpdateBehaviorProperty(ctx context.Context, projectName, objectName, name, property, value string) (map[string]behavior.PropertyDescriptor, error) {
	var props map[string]behavior.PropertyDescriptor
	err := s.run(ctx, "update_behavior_property", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, true, func(p *project.Project) error {
			obj, err := findObject(p, objectName)
			if err != nil {
				return err
			}
			content, err := findBehavior(obj, name)
			if err != nil {
				return err
			}
			prototype := prototypeFor(p, content)
			if prototype == nil {
				return fmt.Errorf("%w: тип %s не зарегистрирован", ErrInvalidProperty, content.TypeName())
			}
			if !prototype.UpdateProperty(content.Content(), property, value, p) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidProperty, property, value)
			}
			props = prototype.Properties(content.Content(), p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventBehaviorPropertyUpdated, BehaviorEvent{
		Project: projectName, Object: objectName, Behavior: name, Property: property, Value: value,
	})
	return props, nil
}

// ImportDocument заменяет проект содержимым документа. Документ может
// быть в любом поддерживаемом формате, включая старые; проект
// создаётся, если его не было.
func (s *Service) ImportDocument(ctx context.Context, projectName string, data []byte, format serializer.Format) (ImportSummary, error) {
	var summary ImportSummary
	err := s.run(ctx, "import_document", projectName, func(ctx context.Context) error {
		if projectName == "" {
			return ErrInvalidName
		}
		el, err := serializer.Decode(data, format)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		for _, item := range project.ObjectElements(el) {
			_, rule := compat.TranslateWithRule(item)
			s.metrics.importedObject(rule)
			summary.Objects++
			if compat.IsLegacy(item) {
				summary.LegacyObjects++
				s.logger.Debug("объект %q прочитан по правилу %s", item.GetStringAttribute("name", "", "nom"), rule)
			}
		}

		p := project.New(projectName, s.platform)
		p.UnserializeFrom(el)
		p.SetName(projectName)

		lock := s.projectLock(projectName)
		lock.Lock()
		defer lock.Unlock()
		return s.repo.Save(ctx, p)
	})
	if err != nil {
		return ImportSummary{}, err
	}

	s.logger.Info("импортирован проект %s: объектов %d, в старом формате %d", projectName, summary.Objects, summary.LegacyObjects)
	s.publish(ctx, EventDocumentImported, DocumentEvent{
		Project: projectName, Format: string(format), Objects: summary.Objects, LegacyObjects: summary.LegacyObjects,
	})
	return summary, nil
}

// ExportDocument кодирует проект в указанном формате
func (s *Service) ExportDocument(ctx context.Context, projectName string, format serializer.Format) ([]byte, error) {
	var data []byte
	err := s.run(ctx, "export_document", projectName, func(ctx context.Context) error {
		return s.withProject(ctx, projectName, false, func(p *project.Project) error {
			var err error
			data, err = p.Encode(format)
			return err
		})
	})
	return data, err
}
