// Package credentials loads typed credential records out of the secrets
// store. The service-account record is the blob handed to the GCS client;
// it stays an opaque pass-through except for private-key normalization.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bucketdrop/secrets"
)

// Record names in the secrets store, one per storage backend.
const (
	ServiceAccountKey = "service_account"
	S3Key             = "s3"
	SFTPKey           = "sftp"
)

// ErrNotConfigured indicates the requested credential record is missing
// or empty. Nothing network-facing runs after this error.
var ErrNotConfigured = errors.New("credentials not configured")

// ServiceAccount is a Google service-account record. Raw holds every
// field of the stored record so unknown fields survive the round trip
// into the client constructor.
type ServiceAccount struct {
	ProjectID   string
	ClientEmail string
	Raw         map[string]string
}

// LoadServiceAccount reads the service_account record, rewrites literal
// \n escape sequences in the private key into real line breaks and
// returns the typed record.
func LoadServiceAccount() (*ServiceAccount, error) {
	record, err := secrets.Get(ServiceAccountKey)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("load service account record: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrNotConfigured
	}

	if key, ok := record["private_key"]; ok {
		record["private_key"] = NormalizePrivateKey(key)
	}

	return &ServiceAccount{
		ProjectID:   record["project_id"],
		ClientEmail: record["client_email"],
		Raw:         record,
	}, nil
}

// JSON renders the record as service-account JSON for client construction.
func (sa *ServiceAccount) JSON() ([]byte, error) {
	return json.Marshal(sa.Raw)
}

// NormalizePrivateKey converts literal two-character \n sequences into
// actual newlines. Secrets pasted through env vars or JSON string fields
// commonly arrive escaped.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// S3Credentials holds static credentials for the S3 backend.
type S3Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Region          string `json:"region"`
}

// LoadS3 reads the s3 record from the secrets store.
func LoadS3() (*S3Credentials, error) {
	record, err := secrets.Get(S3Key)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("load s3 record: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrNotConfigured
	}
	creds := &S3Credentials{
		AccessKeyID:     record["access_key_id"],
		SecretAccessKey: record["secret_access_key"],
		Region:          record["region"],
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3 record missing access_key_id or secret_access_key")
	}
	if creds.Region == "" {
		creds.Region = "us-east-1"
	}
	return creds, nil
}

// SFTPCredentials holds connection info for the SFTP backend. Either
// Password or PrivateKey must be set.
type SFTPCredentials struct {
	Host       string `json:"host"`
	Port       string `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	PrivateKey string `json:"private_key"`
	BaseDir    string `json:"base_dir"`
}

// LoadSFTP reads the sftp record from the secrets store.
func LoadSFTP() (*SFTPCredentials, error) {
	record, err := secrets.Get(SFTPKey)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("load sftp record: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrNotConfigured
	}
	creds := &SFTPCredentials{
		Host:       record["host"],
		Port:       record["port"],
		User:       record["user"],
		Password:   record["password"],
		PrivateKey: NormalizePrivateKey(record["private_key"]),
		BaseDir:    record["base_dir"],
	}
	if creds.Host == "" || creds.User == "" {
		return nil, fmt.Errorf("sftp record missing host or user")
	}
	if creds.Port == "" {
		creds.Port = "22"
	}
	return creds, nil
}
