package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resource2code/internal/crypto"
	"resource2code/model"
)

type Repository struct {
	Store     *Store
	Encryptor crypto.Encryptor
}

func NewRepository(store *Store, enc crypto.Encryptor) *Repository {
	if enc == nil {
		enc = crypto.NopEncryptor{}
	}
	return &Repository{Store: store, Encryptor: enc}
}

func (r *Repository) db(ctx context.Context) *gorm.DB {
	return r.Store.DB.WithContext(ctx)
}

func (r *Repository) ListDataSources(ctx context.Context) ([]model.DataSource, error) {
	var records []dataSourceRecord
	if err := r.db(ctx).Order("name, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	results := make([]model.DataSource, 0, len(records))
	for _, rec := range records {
		ds, err := r.toDataSource(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, ds)
	}
	return results, nil
}

func (r *Repository) CreateDataSource(ctx context.Context, ds model.DataSource) (string, error) {
	rec, err := r.fromDataSource(ds)
	if err != nil {
		return "", err
	}
	rec.ID = uuid.NewString()
	if err := r.db(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create data source: %w", err)
	}
	return rec.ID, nil
}

func (r *Repository) GetDataSource(ctx context.Context, id string) (model.DataSource, error) {
	var rec dataSourceRecord
	err := r.db(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DataSource{}, fmt.Errorf("data source %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.DataSource{}, fmt.Errorf("get data source: %w", err)
	}
	return r.toDataSource(rec)
}

// UpdateDataSource reports whether a row with ds.ID existed.
func (r *Repository) UpdateDataSource(ctx context.Context, ds model.DataSource) (bool, error) {
	rec, err := r.fromDataSource(ds)
	if err != nil {
		return false, err
	}
	res := r.db(ctx).Model(&dataSourceRecord{}).Where("id = ?", ds.ID).Updates(map[string]any{
		"name":         rec.Name,
		"db_type":      rec.DBType,
		"host":         rec.Host,
		"port":         rec.Port,
		"username":     rec.Username,
		"password":     rec.Password,
		"database":     rec.Database,
		"extra_params": rec.ExtraParams,
	})
	if res.Error != nil {
		return false, fmt.Errorf("update data source: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteDataSource(ctx context.Context, id string) (bool, error) {
	res := r.db(ctx).Where("id = ?", id).Delete(&dataSourceRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete data source: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListRules(ctx context.Context) ([]model.Rule, error) {
	var records []codeSampleRecord
	if err := r.db(ctx).Order("name, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	results := make([]model.Rule, 0, len(records))
	for _, rec := range records {
		results = append(results, model.Rule{ID: rec.ID, Name: rec.Name, Content: rec.Content})
	}
	return results, nil
}

func (r *Repository) CreateRule(ctx context.Context, rule model.Rule) (string, error) {
	rec := codeSampleRecord{ID: uuid.NewString(), Name: rule.Name, Content: rule.Content}
	if err := r.db(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create rule: %w", err)
	}
	return rec.ID, nil
}

func (r *Repository) GetRule(ctx context.Context, id string) (model.Rule, error) {
	var rec codeSampleRecord
	err := r.db(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Rule{}, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Rule{}, fmt.Errorf("get rule: %w", err)
	}
	return model.Rule{ID: rec.ID, Name: rec.Name, Content: rec.Content}, nil
}

func (r *Repository) UpdateRule(ctx context.Context, rule model.Rule) (bool, error) {
	res := r.db(ctx).Model(&codeSampleRecord{}).Where("id = ?", rule.ID).Updates(map[string]any{
		"name":    rule.Name,
		"content": rule.Content,
	})
	if res.Error != nil {
		return false, fmt.Errorf("update rule: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteRule(ctx context.Context, id string) (bool, error) {
	res := r.db(ctx).Where("id = ?", id).Delete(&codeSampleRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete rule: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetConfig returns the stored value and whether the key exists.
func (r *Repository) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var rec sysConfigRecord
	err := r.db(ctx).Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %s: %w", key, err)
	}
	return rec.Value, true, nil
}

func (r *Repository) SetConfig(ctx context.Context, key, value string) (bool, error) {
	res := r.db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&sysConfigRecord{Key: key, Value: value})
	if res.Error != nil {
		return false, fmt.Errorf("set config %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteConfig(ctx context.Context, key string) (bool, error) {
	res := r.db(ctx).Where("key = ?", key).Delete(&sysConfigRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete config %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) fromDataSource(ds model.DataSource) (dataSourceRecord, error) {
	password, err := r.Encryptor.Encrypt(ds.Password)
	if err != nil {
		return dataSourceRecord{}, fmt.Errorf("encrypt password: %w", err)
	}
	return dataSourceRecord{
		ID:          ds.ID,
		Name:        ds.Name,
		DBType:      string(ds.DBType),
		Host:        ds.Host,
		Port:        ds.Port,
		Username:    ds.Username,
		Password:    password,
		Database:    ds.Database,
		ExtraParams: ds.ExtraParams,
	}, nil
}

func (r *Repository) toDataSource(rec dataSourceRecord) (model.DataSource, error) {
	password, err := r.Encryptor.Decrypt(rec.Password)
	if err != nil {
		return model.DataSource{}, fmt.Errorf("decrypt password of data source %s: %w", rec.ID, err)
	}
	return model.DataSource{
		ID:          rec.ID,
		Name:        rec.Name,
		DBType:      model.ParseDBType(rec.DBType),
		Host:        rec.Host,
		Port:        rec.Port,
		Username:    rec.Username,
		Password:    password,
		Database:    rec.Database,
		ExtraParams: rec.ExtraParams,
	}, nil
}
