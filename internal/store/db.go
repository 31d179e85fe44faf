package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Verification{}, &Certificate{}, &FraudReport{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_verifications_kind_created ON verifications(kind, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_fraud_reports_district_village ON fraud_reports(district, village)",
		"CREATE INDEX IF NOT EXISTS idx_fraud_reports_created ON fraud_reports(created_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveVerification upserts a verification outcome keyed by subject hash.
func (d *Database) SaveVerification(v *Verification) error {
	if v == nil {
		return errors.New("verification is nil")
	}
	if strings.TrimSpace(v.SubjectHash) == "" {
		return errors.New("verification subject hash is empty")
	}
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subject_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "document_type", "channel",
			"score", "verdict", "reasons_json", "partial", "state",
			"certificate_id", "processing_time_ms", "updated_at",
		}),
	}).Create(v).Error
}

// VerificationQuery filters the verification listing.
type VerificationQuery struct {
	Kind    string
	Verdict string
	UserID  string
	Offset  int
	Limit   int
}

// ListVerifications returns paginated verification records, newest first.
func (d *Database) ListVerifications(opts VerificationQuery) ([]Verification, int64, error) {
	var total int64
	base := d.gorm.Model(&Verification{})
	if kind := strings.TrimSpace(opts.Kind); kind != "" {
		base = base.Where("kind = ?", strings.ToLower(kind))
	}
	if verdict := strings.TrimSpace(opts.Verdict); verdict != "" {
		base = base.Where("verdict = ?", verdict)
	}
	if user := strings.TrimSpace(opts.UserID); user != "" {
		base = base.Where("user_id = ?", user)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("verifications.id DESC").Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []Verification
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// InsertCertificate writes a ledger entry unless one already exists for the
// subject hash. Returns the stored row either way.
func (d *Database) InsertCertificate(cert *Certificate) (*Certificate, error) {
	if cert == nil {
		return nil, errors.New("certificate is nil")
	}
	if strings.TrimSpace(cert.SubjectHash) == "" {
		return nil, errors.New("certificate subject hash is empty")
	}
	err := d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_hash"}},
		DoNothing: true,
	}).Create(cert).Error
	if err != nil {
		return nil, err
	}
	var stored Certificate
	if err := d.gorm.Where("subject_hash = ?", cert.SubjectHash).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// CertificateBySubject fetches the ledger entry for a subject hash, if any.
func (d *Database) CertificateBySubject(hash string) (*Certificate, error) {
	var cert Certificate
	err := d.gorm.Where("subject_hash = ?", hash).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListCertificates returns certificates issued to a user, newest first.
func (d *Database) ListCertificates(userID string) ([]Certificate, error) {
	var rows []Certificate
	err := d.gorm.Where("user_id = ?", strings.TrimSpace(userID)).
		Order("issued_at DESC").Find(&rows).Error
	return rows, err
}

// CreateFraudReport stores a submitted fraud report.
func (d *Database) CreateFraudReport(report *FraudReport) error {
	if report == nil {
		return errors.New("report is nil")
	}
	report.Village = strings.TrimSpace(report.Village)
	report.District = strings.TrimSpace(report.District)
	if report.Village == "" || report.District == "" {
		return errors.New("report requires village and district")
	}
	return d.gorm.Create(report).Error
}

// VillageReportCount aggregates fraud reports per village.
type VillageReportCount struct {
	Village string
	Reports int
}

// VillageReportCounts returns per-village report totals within a district.
func (d *Database) VillageReportCounts(district string) ([]VillageReportCount, error) {
	var rows []VillageReportCount
	err := d.gorm.Model(&FraudReport{}).
		Select("village, COUNT(*) AS reports").
		Where("LOWER(district) = ?", strings.ToLower(strings.TrimSpace(district))).
		Group("village").
		Order("reports DESC").
		Scan(&rows).Error
	return rows, err
}

// Districts returns the distinct districts that have at least one report.
func (d *Database) Districts() ([]string, error) {
	var rows []string
	err := d.gorm.Model(&FraudReport{}).
		Distinct("district").
		Order("district ASC").
		Pluck("district", &rows).Error
	return rows, err
}

// CountFraudReports returns the total number of stored reports.
func (d *Database) CountFraudReports() (int64, error) {
	var total int64
	err := d.gorm.Model(&FraudReport{}).Count(&total).Error
	return total, err
}

// MonthlyReportCount aggregates reports per calendar month.
type MonthlyReportCount struct {
	Month   string
	Reports int
}

// ReportsByMonth returns report counts for the trailing n months.
func (d *Database) ReportsByMonth(n int) ([]MonthlyReportCount, error) {
	if n <= 0 {
		n = 6
	}
	since := time.Now().UTC().AddDate(0, -n, 0)
	var rows []MonthlyReportCount
	err := d.gorm.Model(&FraudReport{}).
		Select("strftime('%Y-%m', created_at) AS month, COUNT(*) AS reports").
		Where("created_at >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

// TypeReportCount aggregates reports per fraud category.
type TypeReportCount struct {
	Category string
	Reports  int
}

// ReportsByType returns report counts grouped by category.
func (d *Database) ReportsByType() ([]TypeReportCount, error) {
	var rows []TypeReportCount
	err := d.gorm.Model(&FraudReport{}).
		Select("category, COUNT(*) AS reports").
		Group("category").
		Order("reports DESC").
		Scan(&rows).Error
	return rows, err
}

// VerdictCount aggregates verifications per verdict tier.
type VerdictCount struct {
	Verdict string
	Count   int
}

// VerificationsByVerdict returns verification counts grouped by verdict.
func (d *Database) VerificationsByVerdict(kind string) ([]VerdictCount, error) {
	base := d.gorm.Model(&Verification{})
	if kind = strings.TrimSpace(kind); kind != "" {
		base = base.Where("kind = ?", strings.ToLower(kind))
	}
	var rows []VerdictCount
	err := base.Select("verdict, COUNT(*) AS count").
		Group("verdict").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
