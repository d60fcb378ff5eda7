package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/project"
)

const projectKeyPrefix = "project:"

// ProjectRepository сохраняет проекты в DocumentStore в виде JSON.
// Загруженные проекты получают платформу репозитория.
type ProjectRepository struct {
	store    DocumentStore
	platform *platform.Platform
}

func NewProjectRepository(store DocumentStore, p *platform.Platform) *ProjectRepository {
	return &ProjectRepository{store: store, platform: p}
}

func projectKey(name string) string { return projectKeyPrefix + name }

// Save сохраняет проект под его именем
func (r *ProjectRepository) Save(ctx context.Context, p *project.Project) error {
	if p.Name() == "" {
		return fmt.Errorf("у проекта нет имени")
	}
	data, err := p.ToJSON()
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, projectKey(p.Name()), data); err != nil {
		return fmt.Errorf("ошибка сохранения проекта %q: %w", p.Name(), err)
	}
	return nil
}

// Load загружает проект. Возвращает ErrNotFound, если проекта нет.
func (r *ProjectRepository) Load(ctx context.Context, name string) (*project.Project, error) {
	data, err := r.store.Get(ctx, projectKey(name))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки проекта %q: %w", name, err)
	}

	p := project.New(name, r.platform)
	if err := p.FromJSON(data); err != nil {
		return nil, err
	}
	// Ключ хранилища главнее имени внутри документа.
	p.SetName(name)
	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, name string) error {
	if err := r.store.Delete(ctx, projectKey(name)); err != nil {
		return fmt.Errorf("ошибка удаления проекта %q: %w", name, err)
	}
	return nil
}

// List возвращает имена сохранённых проектов
func (r *ProjectRepository) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, projectKeyPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, projectKeyPrefix))
	}
	return names, nil
}
