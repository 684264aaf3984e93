package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/hdmotors/dealer-service/internal/aggregate"
	"github.com/hdmotors/dealer-service/internal/amort"
	"github.com/hdmotors/dealer-service/internal/calendar"
	"github.com/hdmotors/dealer-service/internal/config"
	"github.com/hdmotors/dealer-service/internal/export"
	"github.com/hdmotors/dealer-service/internal/integrations/capture"
	"github.com/hdmotors/dealer-service/internal/metrics"
	"github.com/hdmotors/dealer-service/internal/models"
	"github.com/hdmotors/dealer-service/internal/report"
	"github.com/hdmotors/dealer-service/internal/repository"
)

// Service handles business logic
type Service struct {
	repo    *repository.Repository
	capture *capture.Client
	log     *logrus.Logger
	config  *config.Config
	now     func() time.Time
}

// NewService initializes a new service
func NewService(repo *repository.Repository, cap *capture.Client, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, capture: cap, log: log, config: cfg, now: time.Now}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Role:         "staff",
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// WeeklyCharts is the collections chart payload: one dense series per fiscal
// year for payment totals and for average open accounts.
type WeeklyCharts struct {
	Payments     []models.YearSeries `json:"payments"`
	OpenAccounts []models.YearSeries `json:"open_accounts"`
}

// CollectionsWeekly aggregates the full payment and delinquency history into
// the per-year weekly chart series.
func (s *Service) CollectionsWeekly() (*WeeklyCharts, error) {
	payments, delinquency, err := s.fetchHistory()
	if err != nil {
		return nil, err
	}
	today := s.now()
	return &WeeklyCharts{
		Payments:     aggregate.WeeklySums(paymentTotals(payments), today),
		OpenAccounts: aggregate.WeeklyAverages(openCounts(delinquency), today),
	}, nil
}

// CollectionsSummary computes the dashboard header metrics for today.
func (s *Service) CollectionsSummary() (*metrics.Summary, error) {
	payments, delinquency, err := s.fetchHistory()
	if err != nil {
		return nil, err
	}
	today := s.now()
	todayRec, err := s.repo.DelinquencyOn(calendar.DateOnly(today))
	if err != nil {
		return nil, err
	}
	points := aggregate.WeekPoints(paymentTotals(payments), openCounts(delinquency))
	summary := metrics.Compute(payments, points, today, todayRec)
	return &summary, nil
}

// LogDaily upserts one day's payment figures and, when present, the
// delinquency counts for the same day.
func (s *Service) LogDaily(rec models.DailyRecord, del *models.DelinquencyRecord) error {
	rec.Date = calendar.DateOnly(rec.Date)
	if err := s.repo.UpsertPayments(rec); err != nil {
		return err
	}
	if del != nil {
		del.Date = rec.Date
		if err := s.repo.UpsertDelinquency(*del); err != nil {
			return err
		}
	}
	s.log.Infof("Daily log recorded for %s", rec.Date.Format("2006-01-02"))
	return nil
}

func (s *Service) fetchHistory() ([]models.DailyRecord, []models.DelinquencyRecord, error) {
	payments, err := s.repo.AllPayments()
	if err != nil {
		return nil, nil, err
	}
	delinquency, err := s.repo.AllDelinquency()
	if err != nil {
		return nil, nil, err
	}
	return payments, delinquency, nil
}

func paymentTotals(records []models.DailyRecord) []aggregate.Dated {
	out := make([]aggregate.Dated, 0, len(records))
	for _, r := range records {
		out = append(out, aggregate.Dated{Date: r.Date, Value: r.Total()})
	}
	return out
}

func openCounts(records []models.DelinquencyRecord) []aggregate.Dated {
	out := make([]aggregate.Dated, 0, len(records))
	for _, r := range records {
		out = append(out, aggregate.Dated{Date: r.Date, Value: r.OpenAccounts})
	}
	return out
}

// QuoteRequest is a deal-desk quote. Exactly one of TermMonths and Payment is
// the free variable; the other is solved for.
type QuoteRequest struct {
	Principal  float64         `json:"principal"`
	APRPercent float64         `json:"apr_percent"`
	Frequency  amort.Frequency `json:"frequency"`
	TermMonths int             `json:"term_months,omitempty"`
	Payment    float64         `json:"payment,omitempty"`
	SalePrice  float64         `json:"sale_price,omitempty"`
	Wholesale  bool            `json:"wholesale"`
}

// QuoteResponse bundles the solved schedule and the tax block.
type QuoteResponse struct {
	Quote amort.Quote `json:"quote"`
	Taxes amort.Taxes `json:"taxes"`
}

// Quote solves a deal: payment from term or term from payment, plus sales
// taxes on the sale price.
func (s *Service) Quote(req QuoteRequest) (*QuoteResponse, error) {
	if !req.Frequency.Valid() {
		return nil, fmt.Errorf("unknown payment frequency %q", req.Frequency)
	}
	if (req.TermMonths > 0) == (req.Payment > 0) {
		return nil, fmt.Errorf("exactly one of term_months and payment must be set")
	}

	principal := decimal.NewFromFloat(req.Principal)
	apr := decimal.NewFromFloat(req.APRPercent)

	var quote amort.Quote
	var err error
	if req.TermMonths > 0 {
		quote, err = amort.PaymentForTerm(principal, apr, req.TermMonths, req.Frequency)
	} else {
		quote, err = amort.TermForPayment(principal, apr, decimal.NewFromFloat(req.Payment), req.Frequency)
	}
	if err != nil {
		return nil, err
	}

	salePrice := decimal.NewFromFloat(req.SalePrice)
	if req.SalePrice <= 0 {
		salePrice = principal
	}
	return &QuoteResponse{
		Quote: quote,
		Taxes: amort.SalesTaxes(salePrice, req.Wholesale),
	}, nil
}

// DailyDigest builds the end-of-day report digest for today.
func (s *Service) DailyDigest() (*report.Digest, error) {
	today := calendar.DateOnly(s.now())
	weekStart := calendar.WeekStart(today)

	soldToday, err := s.repo.SalesBetween(today, today)
	if err != nil {
		return nil, err
	}
	soldWeek, err := s.repo.SalesBetween(weekStart, today)
	if err != nil {
		return nil, err
	}
	receivedToday, err := s.repo.VehiclesReceivedBetween(today, today)
	if err != nil {
		return nil, err
	}
	receivedWeek, err := s.repo.VehiclesReceivedBetween(weekStart, today)
	if err != nil {
		return nil, err
	}
	logsToday, err := s.repo.StatusLogsBetween(today, today)
	if err != nil {
		return nil, err
	}
	inventory, err := s.repo.UnsoldInventory()
	if err != nil {
		return nil, err
	}

	digest := report.Build(report.Inputs{
		Today:              today,
		SoldToday:          soldToday,
		SoldWeekToDate:     soldWeek,
		ReceivedToday:      receivedToday,
		ReceivedWeekToDate: receivedWeek,
		StatusLogsToday:    logsToday,
		Inventory:          inventory,
	})
	return &digest, nil
}

// DigestText renders today's digest as the shareable text block.
func (s *Service) DigestText() (string, error) {
	digest, err := s.DailyDigest()
	if err != nil {
		return "", err
	}
	return digest.Text(), nil
}

// weeklyTable flattens the sparse weekly series into export rows plus a
// trailing summary row.
func (s *Service) weeklyTable() ([]string, [][]string, error) {
	payments, delinquency, err := s.fetchHistory()
	if err != nil {
		return nil, nil, err
	}
	points := aggregate.WeekPoints(paymentTotals(payments), openCounts(delinquency))

	header := []string{"Week Start", "Total Payments", "Avg Open Accounts"}
	rows := make([][]string, 0, len(points)+1)
	var total float64
	for _, p := range points {
		rows = append(rows, []string{
			p.WeekStart.Format("2006-01-02"),
			fmt.Sprintf("%.2f", p.TotalPayments),
			fmt.Sprintf("%.1f", p.AvgOpenAccounts),
		})
		total += p.TotalPayments
	}
	rows = append(rows, []string{"Total", fmt.Sprintf("%.2f", total), ""})
	return header, rows, nil
}

// WriteCollectionsCSV streams the weekly series as CSV.
func (s *Service) WriteCollectionsCSV(w io.Writer) error {
	header, rows, err := s.weeklyTable()
	if err != nil {
		return err
	}
	return export.WriteCSV(w, header, rows)
}

// ExportSalesReport returns the sales report as a captured PDF from the
// remote service, falling back to a locally rendered tabular PDF when the
// capture fails. The remote error is logged, not swallowed silently.
func (s *Service) ExportSalesReport(ctx context.Context) (string, []byte, error) {
	res, err := s.capture.Screenshot(ctx, capture.ReportSales)
	if err == nil {
		return contentTypeOrPDF(res.ContentType), res.Body, nil
	}
	s.log.Warnf("Remote capture failed, rendering local fallback: %v", err)

	header, rows, tableErr := s.weeklyTable()
	if tableErr != nil {
		return "", nil, fmt.Errorf("remote capture failed (%v) and local fallback failed: %w", err, tableErr)
	}
	pdf, tableErr := export.TablePDF("Sales Report", header, rows, export.SummaryRowPattern)
	if tableErr != nil {
		return "", nil, fmt.Errorf("remote capture failed (%v) and local fallback failed: %w", err, tableErr)
	}
	return "application/pdf", pdf, nil
}

// Screenshot captures the named report remotely. When asPDF is set and the
// service hands back a PNG raster, the raster is embedded into a letter-size
// page, scaled to fit and centered.
func (s *Service) Screenshot(ctx context.Context, reportType string, asPDF bool) (string, []byte, error) {
	res, err := s.capture.Screenshot(ctx, reportType)
	if err != nil {
		return "", nil, err
	}
	if asPDF && res.ContentType == "image/png" {
		pdf, err := export.ImagePDF(res.Body)
		if err != nil {
			return "", nil, fmt.Errorf("failed to embed capture into pdf: %w", err)
		}
		return "application/pdf", pdf, nil
	}
	return contentTypeOrPDF(res.ContentType), res.Body, nil
}

func contentTypeOrPDF(ct string) string {
	if ct == "" {
		return "application/pdf"
	}
	return ct
}
