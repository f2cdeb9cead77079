package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// ElasticSearchConfig is a configuration for an ElasticSearch server.
type ElasticSearchConfig struct {
	// ID is the primary key
	ID uint `gorm:"primary_key" json:"id"`
	// CreatedAt is the time the entry was created.
	CreatedAt time.Time `gorm:"type:timestamp(3) NULL" json:"created_at"`
	// UpdatedAt is the time the entry was update.
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt *time.Time `sql:"index" json:"-"`

	// Address of the server. This must contain either "http" or "https".
	Address string `json:"address"`

	// Username for basic authentication. Optional.
	Username string `json:"username"`

	// Password for basic authentication. Optional.
	Password string `json:"-"`

	// True if this is the server to use by default.
	IsPrimary bool `json:"primary"`
}

// ElasticSearchConfigs is a list of ElasticSearchConfig
type ElasticSearchConfigs []ElasticSearchConfig

// AdminSearchRequest is a request to alter the ElasticSearchConfig
type AdminSearchRequest struct {
	// Address of the server. This must contain either "http" or "https".
	Address string `json:"address" validate:"required,url"`

	// Username for basic authentication. Optional.
	Username string `json:"username"`

	// Password for basic authentication. Optional.
	Password string `json:"password"`

	// True if this is the server to use by default.
	Primary bool `json:"primary"`
}

// AdminSearchResponse contains a response to an AdminSearchRequest.
type AdminSearchResponse struct {
	Message string `json:"status"`
}

// DeleteElasticSearchHandler deletes an elasticsearch config
//
// curl -k -X DELETE http://localhost:8000/1.0/admin/search/{config_id} --header "Private-token: YOUR_TOKEN"
func DeleteElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	configID, em := readID(r, "config_id")
	if em != nil {
		return nil, em
	}

	var config ElasticSearchConfig
	if err := tx.First(&config, configID).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorIDNotFound, err)
	}
	if err := tx.Delete(&config).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return config, nil
}

// ModifyElasticSearchHandler modifies an existing config
//
// curl -k -H "Content-Type: application/json" -X PATCH http://localhost:8000/1.0/admin/search/{config_id} -d '{"address":"http://localhost:9200", "primary":true}' --header "Private-token: YOUR_TOKEN"
func ModifyElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	configID, em := readID(r, "config_id")
	if em != nil {
		return nil, em
	}

	var request AdminSearchRequest
	if em := ParseStruct(&request, r, false); em != nil {
		return nil, em
	}

	var dbConfig ElasticSearchConfig
	if err := tx.First(&dbConfig, configID).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorIDNotFound, err)
	}

	dbConfig.Address = request.Address
	dbConfig.Username = request.Username
	dbConfig.Password = request.Password
	dbConfig.IsPrimary = request.Primary

	if err := tx.Save(&dbConfig).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if request.Primary {
		if em := unsetOtherPrimaries(tx, dbConfig.ID); em != nil {
			return nil, em
		}
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return dbConfig, nil
}

// CreateElasticSearchHandler creates a new elastic search config
//
// curl -k -H "Content-Type: application/json" -X POST http://localhost:8000/1.0/admin/search -d '{"address":"http://localhost:9200", "primary":true}' --header "Private-token: YOUR_TOKEN"
func CreateElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}

	var request AdminSearchRequest
	if em := ParseStruct(&request, r, false); em != nil {
		return nil, em
	}

	dbConfig := ElasticSearchConfig{
		Address:   request.Address,
		Username:  request.Username,
		Password:  request.Password,
		IsPrimary: request.Primary,
	}
	if err := tx.Create(&dbConfig).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if request.Primary {
		if em := unsetOtherPrimaries(tx, dbConfig.ID); em != nil {
			return nil, em
		}
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return dbConfig, nil
}

// unsetOtherPrimaries makes sure only the given config is the primary one.
func unsetOtherPrimaries(tx *gorm.DB, id uint) *gz.ErrMsg {
	err := tx.Model(ElasticSearchConfig{}).Where("is_primary = ? AND id != ?", true, id).
		UpdateColumn("is_primary", false).Error
	if err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	return nil
}

// ListElasticSearchHandler returns a list of the elastic search configs
//
// curl -k -X GET http://localhost:8000/1.0/admin/search --header "Private-token: YOUR_TOKEN"
func ListElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	var dbConfigs ElasticSearchConfigs
	if err := tx.Order("id").Find(&dbConfigs).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return dbConfigs, nil
}

// ReconnectElasticSearchHandler reconnects to the primary ElasticSearch config
//
// curl -k -X GET http://localhost:8000/1.0/admin/search/reconnect --header "Private-token: YOUR_TOKEN"
func ReconnectElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	if err := connectToElasticSearch(r.Context(), tx); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}
	return AdminSearchResponse{Message: "Reconnected"}, nil
}

// RebuildElasticSearchHandler drops the forum topics index, creates it again
// and indexes every topic.
//
// curl -k -X GET http://localhost:8000/1.0/admin/search/rebuild --header "Private-token: YOUR_TOKEN"
func RebuildElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	if globals.ElasticSearch.Client() == nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected,
			errors.New("no elasticsearch server is connected"))
	}
	ctx := r.Context()
	if err := globals.ElasticSearch.DeleteIndex(ctx); err != nil {
		gz.LoggerFromContext(ctx).Error("Error deleting the forum topics index:", err)
	}
	if err := globals.ElasticSearch.CreateIndex(ctx); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}
	if em := globals.Forum.RebuildIndex(ctx, tx); em != nil {
		return nil, em
	}
	return AdminSearchResponse{Message: "Rebuilt indices"}, nil
}

// UpdateElasticSearchHandler indexes every forum topic again, without
// dropping the index.
//
// curl -k -X GET http://localhost:8000/1.0/admin/search/update --header "Private-token: YOUR_TOKEN"
func UpdateElasticSearchHandler(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}
	if em := globals.Forum.RebuildIndex(r.Context(), tx); em != nil {
		return nil, em
	}
	return AdminSearchResponse{Message: "Updated indices"}, nil
}

// primaryElasticConfig returns the server to connect to. The configured
// address wins over the primary config stored in DB.
func primaryElasticConfig(tx *gorm.DB) (*elasticsearch.Config, error) {
	if globals.Config != nil && globals.Config.ElasticAddress != "" {
		return &elasticsearch.Config{
			Addresses: []string{globals.Config.ElasticAddress},
			Username:  globals.Config.ElasticUsername,
			Password:  globals.Config.ElasticPassword,
		}, nil
	}
	if tx == nil {
		return nil, errors.New("no database")
	}
	var dbConfig ElasticSearchConfig
	if err := tx.Where("is_primary = ?", true).First(&dbConfig).Error; err != nil {
		return nil, err
	}
	return &elasticsearch.Config{
		Addresses: []string{dbConfig.Address},
		Username:  dbConfig.Username,
		Password:  dbConfig.Password,
	}, nil
}

// connectToElasticSearch establishes a connection to elastic search and makes
// sure the forum topics index exists. The forum search falls back to SQL
// while no server is connected.
func connectToElasticSearch(ctx context.Context, tx *gorm.DB) error {
	logger := gz.LoggerFromContext(ctx)

	cfg, err := primaryElasticConfig(tx)
	if err != nil {
		logger.Debug("No ElasticSearch configuration, skipping")
		return err
	}

	client, err := elasticsearch.NewClient(*cfg)
	if err != nil {
		logger.Error("Elastic search error creating new elasticsearch client:", err)
		return err
	}

	// Get cluster info
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		logger.Error("Elastic search error getting response:", err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		logger.Error("Elastic search error:", res.String())
		return errors.Errorf("elasticsearch info request failed: %s", res.Status())
	}

	var response struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		logger.Error("Error parsing the response body:", err)
	}
	logger.Info("Elastic Search Client:", elasticsearch.Version)
	logger.Info("Elastic Search Server:", response.Version.Number)

	globals.ElasticSearch.SetClient(client)
	if err := globals.ElasticSearch.CreateIndex(ctx); err != nil {
		logger.Error("Error creating the forum topics index:", err)
	}
	return nil
}
