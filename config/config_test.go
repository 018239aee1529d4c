package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.SAP.ProgID != "SAPbobsCOM.Company" {
		t.Errorf("ProgID = %q", cfg.SAP.ProgID)
	}
	if cfg.SAP.DBServerType != "dst_MSSQL2019" {
		t.Errorf("DBServerType = %q", cfg.SAP.DBServerType)
	}
	if cfg.Database.Port != 1433 {
		t.Errorf("database port = %d", cfg.Database.Port)
	}
	if cfg.Web.Port != 8082 {
		t.Errorf("web port = %d", cfg.Web.Port)
	}
	if cfg.Messaging.SyncTopic != "b1bridge/sync" {
		t.Errorf("sync topic = %q", cfg.Messaging.SyncTopic)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Web.Port != 8082 {
		t.Errorf("expected default port, got %d", cfg.Web.Port)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b1bridge.yaml")
	data := "sap:\n  server: sap01\n  company_db: SBO_PROD\nweb:\n  port: 9000\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SAP.Server != "sap01" || cfg.SAP.CompanyDB != "SBO_PROD" {
		t.Errorf("sap section not loaded: %+v", cfg.SAP)
	}
	if cfg.Web.Port != 9000 {
		t.Errorf("web port = %d", cfg.Web.Port)
	}
	if cfg.SAP.ProgID != "SAPbobsCOM.Company" {
		t.Errorf("unset field lost its default: %q", cfg.SAP.ProgID)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b1bridge.yaml")
	cfg := Defaults()
	cfg.SAP.Server = "sap01"
	cfg.Messaging.Backend = "kafka"
	cfg.Messaging.Kafka.Brokers = []string{"kafka01:9092", "kafka02:9092"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SAP.Server != "sap01" {
		t.Errorf("server = %q", loaded.SAP.Server)
	}
	if loaded.Messaging.Backend != "kafka" || len(loaded.Messaging.Kafka.Brokers) != 2 {
		t.Errorf("messaging section lost: %+v", loaded.Messaging)
	}
}
