package dyndns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"
)

// Record is a DNS record exactly as Cloudflare returned it.
// Keeping the raw members lets an update send back every field untouched.
type Record map[string]json.RawMessage

// DNSRecord decodes the fields of r that this package cares about.
func (r Record) DNSRecord() (cloudflare.DNSRecord, error) {
	var rec cloudflare.DNSRecord
	b, err := json.Marshal(r)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("error decoding DNS record: %w", err)
	}
	return rec, nil
}

// WithContent returns a copy of r whose content member is ip.
func (r Record) WithContent(ip string) Record {
	c := make(Record, len(r)+1)
	for k, v := range r {
		c[k] = v
	}
	c["content"], _ = json.Marshal(ip)
	return c
}

// NewUpdater constructs an Updater for the "A" record recordName in the zone zoneName.
func NewUpdater(api API, zoneName, recordName string) *Updater {
	return &Updater{
		api:        api,
		zoneName:   zoneName,
		recordName: recordName,
		logger:     logr.Discard(),
	}
}

// Updater resolves a zone and record name to Cloudflare IDs and rewrites the record's content.
//
// The zone ID and record are each fetched at most once per Updater.
// An Updater is not safe for concurrent use.
type Updater struct {
	api        API
	zoneName   string
	recordName string
	logger     logr.Logger

	zoneID string
	record Record
}

// SetLogger implements the logger hook used by New.
func (u *Updater) SetLogger(logger logr.Logger) {
	u.logger = logger
}

// ZoneID returns the ID of the first zone matching the configured zone name.
func (u *Updater) ZoneID(ctx context.Context) (string, error) {
	if u.zoneID != "" {
		return u.zoneID, nil
	}
	u.logger.V(1).Info("looking up zone ID", "zone", u.zoneName)
	result, err := u.api.Get(ctx, "/zones", url.Values{"name": {u.zoneName}})
	if err != nil {
		return "", fmt.Errorf("error listing zones: %w", err)
	}
	var zones []cloudflare.Zone
	if err := json.Unmarshal(result, &zones); err != nil {
		return "", fmt.Errorf("error decoding zones: %w", err)
	}
	if len(zones) == 0 {
		return "", &NotFoundError{Kind: "zone", Name: u.zoneName}
	}
	u.zoneID = zones[0].ID
	u.logger.V(1).Info("got zone ID", "zone", u.zoneName, "id", u.zoneID)
	return u.zoneID, nil
}

// DNSRecord returns the first "A" record matching the configured record name.
func (u *Updater) DNSRecord(ctx context.Context) (Record, error) {
	if u.record != nil {
		return u.record, nil
	}
	zid, err := u.ZoneID(ctx)
	if err != nil {
		return nil, err
	}
	u.logger.V(1).Info("looking up DNS record", "name", u.recordName, "zone", zid)
	result, err := u.api.Get(ctx, "/zones/"+zid+"/dns_records", url.Values{
		"name": {u.recordName},
		"type": {"A"},
	})
	if err != nil {
		return nil, fmt.Errorf("error listing DNS records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, fmt.Errorf("error decoding DNS records: %w", err)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Kind: `"A" DNS record`, Name: u.recordName}
	}
	u.record = records[0]
	return u.record, nil
}

// UpdateDNSRecord sets the record's content to ip.
// The full record previously returned by Cloudflare is sent back with only content replaced.
func (u *Updater) UpdateDNSRecord(ctx context.Context, ip string) error {
	zid, err := u.ZoneID(ctx)
	if err != nil {
		return err
	}
	record, err := u.DNSRecord(ctx)
	if err != nil {
		return err
	}
	rec, err := record.DNSRecord()
	if err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("DNS record %s has no id", u.recordName)
	}
	u.logger.V(1).Info("updating DNS record", "name", rec.Name, "id", rec.ID, "old", rec.Content, "new", ip)
	if _, err := u.api.Put(ctx, "/zones/"+zid+"/dns_records/"+rec.ID, record.WithContent(ip)); err != nil {
		return fmt.Errorf("error updating DNS record %s: %w", rec.ID, err)
	}
	return nil
}
