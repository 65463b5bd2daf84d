package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/models"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return gormDB, mock
}

// fakeBlobStore stands in for the disk store in service tests.
type fakeBlobStore struct {
	saved int
	fail  bool
}

func (f *fakeBlobStore) Save(data []byte, originalName string) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	f.saved++
	return "uploads/" + originalName, nil
}

func bookingColumns() []string {
	return []string{
		"id", "listing_id", "user_id", "quantity", "amount", "status",
		"payment_id", "payment_screenshot", "payment_verified",
	}
}

// nullableStr converts optional fields to plain driver values for sqlmock.
func nullableStr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func bookingRow(mockRows *sqlmock.Rows, b models.Booking) *sqlmock.Rows {
	return mockRows.AddRow(
		b.ID.String(), b.ListingID.String(), b.UserID.String(),
		b.Quantity, b.Amount, string(b.Status),
		nullableStr(b.PaymentID), nullableStr(b.PaymentScreenshot), b.PaymentVerified,
	)
}

func expectBookingSelect(mock sqlmock.Sqlmock, b models.Booking) {
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingColumns()), b))
}

func expectListingSelect(mock sqlmock.Sqlmock, l models.Listing) {
	rows := sqlmock.NewRows([]string{"id", "type", "price", "owner_id"}).
		AddRow(l.ID.String(), string(l.Type), l.Price, l.OwnerID.String())
	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).WillReturnRows(rows)
}

func TestCreateBookingComputesAmountSnapshot(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	listing := models.Listing{ID: uuid.New(), Type: models.ListingHostel, Price: 5000, OwnerID: uuid.New()}

	expectListingSelect(mock, listing)
	mock.ExpectExec(`INSERT INTO "bookings"`).WillReturnResult(sqlmock.NewResult(1, 1))

	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	booking, err := svc.Create(student, CreateBookingInput{ListingID: listing.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if booking.Amount != 10000 {
		t.Errorf("Amount = %d, want 10000", booking.Amount)
	}
	if booking.Status != models.BookingPending {
		t.Errorf("Status = %s, want pending", booking.Status)
	}
	if booking.UserID != student.ID {
		t.Errorf("UserID = %s, want %s", booking.UserID, student.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingRejectsNonStudents(t *testing.T) {
	db, _ := newTestDB(t)
	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}

	for _, role := range []string{models.RoleProvider, models.RoleAdmin} {
		_, err := svc.Create(Actor{ID: uuid.New(), Role: role}, CreateBookingInput{ListingID: uuid.New(), Quantity: 1})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("role %s: err = %v, want ErrForbidden", role, err)
		}
	}
}

func TestCreateBookingRejectsBadQuantity(t *testing.T) {
	db, _ := newTestDB(t)
	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}

	for _, quantity := range []int{0, -3} {
		_, err := svc.Create(student, CreateBookingInput{ListingID: uuid.New(), Quantity: quantity})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: err = %v, want ErrInvalidQuantity", quantity, err)
		}
	}
}

func TestCreateBookingBlobFailureLeavesNoRecord(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	listing := models.Listing{ID: uuid.New(), Price: 3000, OwnerID: uuid.New()}

	expectListingSelect(mock, listing)
	// No INSERT expectation: the upload fails and nothing is written.

	svc := BookingService{DB: db, Blobs: &fakeBlobStore{fail: true}}
	_, err := svc.Create(student, CreateBookingInput{
		ListingID:      listing.ID,
		Quantity:       1,
		Screenshot:     []byte{0x89, 0x50},
		ScreenshotName: "proof.png",
	})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionByOwningProvider(t *testing.T) {
	db, mock := newTestDB(t)
	provider := Actor{ID: uuid.New(), Role: models.RoleProvider}
	listing := models.Listing{ID: uuid.New(), Price: 5000, OwnerID: provider.ID}
	booking := models.Booking{ID: uuid.New(), ListingID: listing.ID, UserID: uuid.New(), Quantity: 1, Amount: 5000, Status: models.BookingPending}

	expectBookingSelect(mock, booking)
	expectListingSelect(mock, listing)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	svc := BookingService{DB: db}
	updated, err := svc.Transition(provider, booking.ID, models.BookingAccepted)
	if err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if updated.Status != models.BookingAccepted {
		t.Errorf("Status = %s, want accepted", updated.Status)
	}
	if updated.PaymentVerified {
		t.Error("Transition must not touch payment_verified")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionForbiddenForOtherProvider(t *testing.T) {
	db, mock := newTestDB(t)
	stranger := Actor{ID: uuid.New(), Role: models.RoleProvider}
	listing := models.Listing{ID: uuid.New(), Price: 5000, OwnerID: uuid.New()}
	booking := models.Booking{ID: uuid.New(), ListingID: listing.ID, UserID: uuid.New(), Status: models.BookingPending}

	expectBookingSelect(mock, booking)
	expectListingSelect(mock, listing)

	svc := BookingService{DB: db}
	if _, err := svc.Transition(stranger, booking.ID, models.BookingAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestTransitionOutOfTerminalStateFails(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	listing := models.Listing{ID: uuid.New(), OwnerID: uuid.New()}

	for _, from := range []models.BookingStatus{models.BookingAccepted, models.BookingRejected} {
		booking := models.Booking{ID: uuid.New(), ListingID: listing.ID, UserID: uuid.New(), Status: from}
		expectBookingSelect(mock, booking)
		expectListingSelect(mock, listing)

		svc := BookingService{DB: db}
		if _, err := svc.Transition(admin, booking.ID, models.BookingWaitlist); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("from %s: err = %v, want ErrInvalidTransition", from, err)
		}
	}
}

func TestTransitionSelfLoopFails(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	listing := models.Listing{ID: uuid.New(), OwnerID: uuid.New()}
	booking := models.Booking{ID: uuid.New(), ListingID: listing.ID, UserID: uuid.New(), Status: models.BookingWaitlist}

	expectBookingSelect(mock, booking)
	expectListingSelect(mock, listing)

	svc := BookingService{DB: db}
	if _, err := svc.Transition(admin, booking.ID, models.BookingWaitlist); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionLosesRace(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	listing := models.Listing{ID: uuid.New(), OwnerID: uuid.New()}
	booking := models.Booking{ID: uuid.New(), ListingID: listing.ID, UserID: uuid.New(), Status: models.BookingPending}

	expectBookingSelect(mock, booking)
	expectListingSelect(mock, listing)
	// The guarded update matches nothing: another caller already moved the
	// booking out of pending.
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	won := booking
	won.Status = models.BookingRejected
	expectBookingSelect(mock, won)

	svc := BookingService{DB: db}
	if _, err := svc.Transition(admin, booking.ID, models.BookingAccepted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionMissingBooking(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).WillReturnRows(sqlmock.NewRows(bookingColumns()))

	svc := BookingService{DB: db}
	_, err := svc.Transition(Actor{ID: uuid.New(), Role: models.RoleAdmin}, uuid.New(), models.BookingAccepted)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestAttachEvidenceStoresTransactionReference(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	booking := models.Booking{ID: uuid.New(), ListingID: uuid.New(), UserID: student.ID, Status: models.BookingPending}

	expectBookingSelect(mock, booking)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	txn := "TXN123"
	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	updated, err := svc.AttachEvidence(student, booking.ID, PaymentEvidenceInput{PaymentID: &txn})
	if err != nil {
		t.Fatalf("AttachEvidence returned error: %v", err)
	}
	if updated.PaymentID == nil || *updated.PaymentID != txn {
		t.Errorf("PaymentID = %v, want %q", updated.PaymentID, txn)
	}
	if updated.Status != models.BookingPending {
		t.Errorf("Status = %s, attaching evidence must not change it", updated.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttachEvidenceUploadsScreenshot(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	booking := models.Booking{ID: uuid.New(), ListingID: uuid.New(), UserID: student.ID, Status: models.BookingPending}

	expectBookingSelect(mock, booking)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	blobs := &fakeBlobStore{}
	svc := BookingService{DB: db, Blobs: blobs}
	updated, err := svc.AttachEvidence(student, booking.ID, PaymentEvidenceInput{
		Screenshot:     []byte{0x89, 0x50, 0x4e, 0x47},
		ScreenshotName: "proof.png",
	})
	if err != nil {
		t.Fatalf("AttachEvidence returned error: %v", err)
	}
	if blobs.saved != 1 {
		t.Errorf("blob store saves = %d, want 1", blobs.saved)
	}
	if updated.PaymentScreenshot == nil || *updated.PaymentScreenshot != "uploads/proof.png" {
		t.Errorf("PaymentScreenshot = %v, want uploads/proof.png", updated.PaymentScreenshot)
	}
}

func TestAttachEvidenceForbiddenForOtherUser(t *testing.T) {
	db, mock := newTestDB(t)
	booking := models.Booking{ID: uuid.New(), ListingID: uuid.New(), UserID: uuid.New(), Status: models.BookingPending}
	expectBookingSelect(mock, booking)

	txn := "TXN123"
	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	_, err := svc.AttachEvidence(Actor{ID: uuid.New(), Role: models.RoleStudent}, booking.ID, PaymentEvidenceInput{PaymentID: &txn})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAttachEvidenceRequiresSomething(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	booking := models.Booking{ID: uuid.New(), ListingID: uuid.New(), UserID: student.ID, Status: models.BookingPending}
	expectBookingSelect(mock, booking)

	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	_, err := svc.AttachEvidence(student, booking.ID, PaymentEvidenceInput{})
	if !errors.Is(err, ErrMissingEvidence) {
		t.Fatalf("err = %v, want ErrMissingEvidence", err)
	}
}

func TestAttachEvidenceFrozenOnceVerified(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	txn := "TXN123"
	booking := models.Booking{
		ID: uuid.New(), ListingID: uuid.New(), UserID: student.ID,
		Status: models.BookingAccepted, PaymentID: &txn, PaymentVerified: true,
	}
	expectBookingSelect(mock, booking)

	newTxn := "TXN999"
	blobs := &fakeBlobStore{}
	svc := BookingService{DB: db, Blobs: blobs}
	_, err := svc.AttachEvidence(student, booking.ID, PaymentEvidenceInput{PaymentID: &newTxn})
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("err = %v, want ErrAlreadyVerified", err)
	}
	if blobs.saved != 0 {
		t.Errorf("blob store saves = %d, want 0", blobs.saved)
	}
}

func TestVerifyPaymentAdminOnly(t *testing.T) {
	db, _ := newTestDB(t)
	svc := BookingService{DB: db}

	for _, role := range []string{models.RoleStudent, models.RoleProvider} {
		_, err := svc.SetPaymentVerified(Actor{ID: uuid.New(), Role: role}, uuid.New(), true, nil)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("role %s: err = %v, want ErrForbidden", role, err)
		}
	}
}

func TestVerifyPaymentRequiresEvidence(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	booking := models.Booking{ID: uuid.New(), ListingID: uuid.New(), UserID: uuid.New(), Status: models.BookingPending}
	expectBookingSelect(mock, booking)

	svc := BookingService{DB: db}
	if _, err := svc.SetPaymentVerified(admin, booking.ID, true, nil); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("err = %v, want ErrNoEvidence", err)
	}
}

func TestVerifyPaymentStampsTimestamp(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	txn := "TXN123"
	booking := models.Booking{
		ID: uuid.New(), ListingID: uuid.New(), UserID: uuid.New(),
		Status: models.BookingPending, PaymentID: &txn,
	}

	expectBookingSelect(mock, booking)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	notes := "matched bank statement"
	svc := BookingService{DB: db}
	updated, err := svc.SetPaymentVerified(admin, booking.ID, true, &notes)
	if err != nil {
		t.Fatalf("SetPaymentVerified returned error: %v", err)
	}
	if !updated.PaymentVerified {
		t.Error("PaymentVerified = false, want true")
	}
	if updated.PaymentVerifiedAt == nil {
		t.Error("PaymentVerifiedAt not stamped")
	}
	if updated.Status != models.BookingPending {
		t.Errorf("Status = %s, verification must not change it", updated.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	txn := "TXN123"

	var lastVerified bool
	for i := 0; i < 2; i++ {
		booking := models.Booking{
			ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), ListingID: uuid.New(), UserID: uuid.New(),
			Status: models.BookingPending, PaymentID: &txn, PaymentVerified: i > 0,
		}
		expectBookingSelect(mock, booking)
		mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

		svc := BookingService{DB: db}
		updated, err := svc.SetPaymentVerified(admin, booking.ID, true, nil)
		if err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
		lastVerified = updated.PaymentVerified
	}
	if !lastVerified {
		t.Error("second call changed the observable verified state")
	}
}

func TestUnverifyClearsTimestamp(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	txn := "TXN123"
	booking := models.Booking{
		ID: uuid.New(), ListingID: uuid.New(), UserID: uuid.New(),
		Status: models.BookingAccepted, PaymentID: &txn, PaymentVerified: true,
	}

	expectBookingSelect(mock, booking)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	svc := BookingService{DB: db}
	updated, err := svc.SetPaymentVerified(admin, booking.ID, false, nil)
	if err != nil {
		t.Fatalf("SetPaymentVerified returned error: %v", err)
	}
	if updated.PaymentVerified {
		t.Error("PaymentVerified = true, want false")
	}
	if updated.PaymentVerifiedAt != nil {
		t.Error("PaymentVerifiedAt not cleared")
	}
}

func TestListStudentScopedToOwnBookings(t *testing.T) {
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	booking := models.Booking{
		ID: uuid.New(), ListingID: uuid.New(), UserID: student.ID,
		Quantity: 1, Amount: 5000, Status: models.BookingPending,
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE user_id = \$1`).
		WithArgs(student.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE user_id = \$1 (.+)ORDER BY created_at DESC`).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingColumns()), booking))
	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price", "owner_id"}).
			AddRow(booking.ListingID.String(), 5000, uuid.New().String()))
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(student.ID.String(), "Asha"))

	svc := BookingService{DB: db}
	page, err := svc.List(student, BookingFilters{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 1 || len(page.Bookings) != 1 {
		t.Errorf("page = %d bookings, total %d; want 1 and 1", len(page.Bookings), page.Total)
	}
	if page.Bookings[0].UserID != student.ID {
		t.Errorf("returned booking belongs to %s, want %s", page.Bookings[0].UserID, student.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListProviderScopedToOwnedListings(t *testing.T) {
	db, mock := newTestDB(t)
	provider := Actor{ID: uuid.New(), Role: models.RoleProvider}

	// Both statements must restrict to bookings whose listing the provider
	// owns, via the subquery on listings.owner_id.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE listing_id IN \(SELECT (.+) FROM "listings" WHERE owner_id = \$1`).
		WithArgs(provider.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE listing_id IN \(SELECT (.+) FROM "listings" WHERE owner_id = \$1(.+)ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()))

	svc := BookingService{DB: db}
	page, err := svc.List(provider, BookingFilters{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 0 || len(page.Bookings) != 0 {
		t.Errorf("page = %d bookings, total %d; want empty", len(page.Bookings), page.Total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAdminFiltersHonored(t *testing.T) {
	db, mock := newTestDB(t)
	admin := Actor{ID: uuid.New(), Role: models.RoleAdmin}
	listingID := uuid.New()
	verified := true

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE listing_id = \$1 AND status = \$2 AND payment_verified = \$3`).
		WithArgs(listingID.String(), "accepted", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE listing_id = \$1 AND status = \$2 AND payment_verified = \$3(.+)ORDER BY created_at DESC LIMIT (.+) OFFSET`).
		WillReturnRows(sqlmock.NewRows(bookingColumns()))

	svc := BookingService{DB: db}
	page, err := svc.List(admin, BookingFilters{
		Status:          string(models.BookingAccepted),
		ListingID:       &listingID,
		PaymentVerified: &verified,
		Page:            2,
		Limit:           5,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("Total = %d, want 7", page.Total)
	}
	if page.Page != 2 || page.Limit != 5 {
		t.Errorf("page/limit = %d/%d, want 2/5", page.Page, page.Limit)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListStudentCannotWidenScope(t *testing.T) {
	db, _ := newTestDB(t)
	svc := BookingService{DB: db}
	listingID := uuid.New()

	_, err := svc.List(Actor{ID: uuid.New(), Role: models.RoleStudent}, BookingFilters{ListingID: &listingID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteBookingAdminOnly(t *testing.T) {
	db, _ := newTestDB(t)
	svc := BookingService{DB: db}

	for _, role := range []string{models.RoleStudent, models.RoleProvider} {
		if err := svc.Delete(Actor{ID: uuid.New(), Role: role}, uuid.New()); !errors.Is(err, ErrForbidden) {
			t.Errorf("role %s: err = %v, want ErrForbidden", role, err)
		}
	}
}

func TestDeleteBookingMissing(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	svc := BookingService{DB: db}
	err := svc.Delete(Actor{ID: uuid.New(), Role: models.RoleAdmin}, uuid.New())
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestAmountSnapshotSurvivesPriceEdit(t *testing.T) {
	// The amount is computed once at creation; a later price change on the
	// listing must not leak into the stored booking.
	db, mock := newTestDB(t)
	student := Actor{ID: uuid.New(), Role: models.RoleStudent}
	listing := models.Listing{ID: uuid.New(), Price: 5000, OwnerID: uuid.New()}

	expectListingSelect(mock, listing)
	mock.ExpectExec(`INSERT INTO "bookings"`).WillReturnResult(sqlmock.NewResult(1, 1))

	svc := BookingService{DB: db, Blobs: &fakeBlobStore{}}
	booking, err := svc.Create(student, CreateBookingInput{ListingID: listing.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	listing.Price = 9000
	if booking.Amount != 10000 {
		t.Errorf("Amount = %d, want the 10000 snapshot", booking.Amount)
	}
	if got := fmt.Sprintf("%d", booking.Amount); got != "10000" {
		t.Errorf("Amount rendered as %s", got)
	}
}
