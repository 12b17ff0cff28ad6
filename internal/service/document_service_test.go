package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/alexanderramin/buildseq/internal/repository"
	"github.com/alexanderramin/buildseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	database  *sql.DB
	docs      *repository.SQLiteDocumentRepo
	items     *repository.SQLiteLineItemRepo
	schedules *repository.SQLiteScheduleRepo
	imports   ImportService
	service   DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	f := &documentFixture{
		database:  database,
		docs:      repository.NewSQLiteDocumentRepo(database),
		items:     repository.NewSQLiteLineItemRepo(database),
		schedules: repository.NewSQLiteScheduleRepo(database),
	}
	f.imports = NewImportService(uow)
	f.service = NewDocumentService(f.docs, f.items, f.schedules, uow, nil)
	return f
}

// serviceWith builds a document service over the fixture's data that
// writes through uow.
func (f *documentFixture) serviceWith(uow db.UnitOfWork) DocumentService {
	return NewDocumentService(f.docs, f.items, f.schedules, uow, nil)
}

func shedEstimate() *importer.DocumentFile {
	sqft := 120.0
	return &importer.DocumentFile{
		Document: importer.DocumentImport{
			Kind:          "estimate",
			Title:         "Backyard shed",
			Customer:      "J. Ortiz",
			SquareFootage: &sqft,
		},
		Items: []importer.ItemImport{
			{Name: "Pour footing", Description: "concrete footing"},
			{Name: "Frame walls", DependsOn: []string{"Pour footing"}},
			{Name: "Paint exterior"},
		},
	}
}

func (f *documentFixture) importShed(t *testing.T) *domain.Document {
	t.Helper()
	res, err := f.imports.ImportDocumentFromSchema(context.Background(), shedEstimate())
	require.NoError(t, err)
	return res.Document
}

func requireDocumentCode(t *testing.T, err error, code app.DocumentErrorCode) {
	t.Helper()
	require.Error(t, err)
	var docErr *app.DocumentError
	require.True(t, errors.As(err, &docErr), "expected *DocumentError, got %T: %v", err, err)
	assert.Equal(t, code, docErr.Code)
}

func TestImport_AssignsShortIDAndStoresItems(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	res, err := f.imports.ImportDocumentFromSchema(ctx, shedEstimate())
	require.NoError(t, err)
	assert.Equal(t, "EST0001", res.Document.ShortID)
	assert.Equal(t, 3, res.LineItemCount)

	second, err := f.imports.ImportDocumentFromSchema(ctx, shedEstimate())
	require.NoError(t, err)
	assert.Equal(t, "EST0002", second.Document.ShortID)

	items, err := f.items.ListByDocument(ctx, res.Document.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Pour footing"}, items[1].DependsOn)
	assert.Equal(t, 1.0, items[0].Quantity)
}

func TestImport_KeepsExplicitShortID(t *testing.T) {
	f := newDocumentFixture(t)
	file := shedEstimate()
	file.Document.ShortID = "est0040"

	res, err := f.imports.ImportDocumentFromSchema(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "EST0040", res.Document.ShortID)

	next, err := f.imports.ImportDocumentFromSchema(context.Background(), shedEstimate())
	require.NoError(t, err)
	assert.Equal(t, "EST0041", next.Document.ShortID, "allocator continues after stored IDs")
}

func TestImport_ExplicitShortIDAdvancesCounter(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	first, err := f.imports.ImportDocumentFromSchema(ctx, shedEstimate())
	require.NoError(t, err)
	assert.Equal(t, "EST0001", first.Document.ShortID)

	explicit := shedEstimate()
	explicit.Document.ShortID = "EST0002"
	res, err := f.imports.ImportDocumentFromSchema(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, "EST0002", res.Document.ShortID)

	for _, want := range []string{"EST0003", "EST0004"} {
		next, err := f.imports.ImportDocumentFromSchema(ctx, shedEstimate())
		require.NoError(t, err)
		assert.Equal(t, want, next.Document.ShortID)
	}
}

func TestImport_ValidationErrorsReportedTogether(t *testing.T) {
	f := newDocumentFixture(t)
	file := &importer.DocumentFile{
		Document: importer.DocumentImport{Kind: "quote"},
		Items:    []importer.ItemImport{{Name: ""}},
	}
	_, err := f.imports.ImportDocumentFromSchema(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (3 errors)")
	assert.Contains(t, err.Error(), "document.kind")
	assert.Contains(t, err.Error(), "document.title")
	assert.Contains(t, err.Error(), "items[0].name")

	docs, err := f.docs.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestImport_FromYAMLFile(t *testing.T) {
	f := newDocumentFixture(t)
	path := filepath.Join(t.TempDir(), "kitchen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`document:
  kind: estimate
  title: Kitchen refresh
items:
  - name: Demo cabinets
  - name: Hang drywall
    depends_on: [Demo cabinets]
`), 0o644))

	res, err := f.imports.ImportDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen refresh", res.Document.Title)
	assert.Equal(t, 2, res.LineItemCount)
}

func TestImport_MissingFile(t *testing.T) {
	f := newDocumentFixture(t)
	_, err := f.imports.ImportDocument(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading import file")
}

func TestImport_RollsBackOnEveryWrite(t *testing.T) {
	counter := &testutil.FailOnNthExecUoW{DB: testutil.NewTestDB(t)}
	_, err := NewImportService(counter).ImportDocumentFromSchema(context.Background(), shedEstimate())
	require.NoError(t, err)
	writes := counter.Execs()
	require.Greater(t, writes, 2)

	for n := 1; n <= writes; n++ {
		database := testutil.NewTestDB(t)
		uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: int32(n), Err: errors.New("injected")}
		_, err := NewImportService(uow).ImportDocumentFromSchema(context.Background(), shedEstimate())
		require.Error(t, err, "write %d", n)

		var count int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count))
		assert.Equal(t, 0, count, "write %d: document should be rolled back", n)
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM line_items`).Scan(&count))
		assert.Equal(t, 0, count, "write %d: line items should be rolled back", n)
	}
}

func TestDocumentService_GetByShortOrFullID(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)
	ctx := context.Background()

	byShort, err := f.service.Get(ctx, "est0001")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byShort.Document.ID)
	assert.Len(t, byShort.LineItems, 3)
	assert.Nil(t, byShort.Schedule)

	byID, err := f.service.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ShortID, byID.Document.ShortID)

	_, err = f.service.Get(ctx, "EST0999")
	requireDocumentCode(t, err, app.DocumentErrNotFound)
}

func TestDocumentService_Schedule(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)
	ctx := context.Background()

	sched, err := f.service.Schedule(ctx, doc.ShortID, domain.CriticalPathCPM)
	require.NoError(t, err)
	assert.Equal(t, domain.CriticalPathCPM, sched.Mode)
	require.Len(t, sched.Result.Tasks, 3)
	footing := sched.Result.Tasks[0]
	assert.Equal(t, "Pour footing", footing.Name)
	assert.Equal(t, 0.0, footing.StartDay)
	for _, task := range sched.Result.Tasks {
		assert.NotNil(t, task.SlackDays)
	}

	view, err := f.service.Get(ctx, doc.ShortID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentScheduled, view.Document.Status)
	require.NotNil(t, view.Schedule)
	assert.Equal(t, sched.ID, view.Schedule.ID)
	assert.Equal(t, sched.Result, view.Schedule.Result)
}

func TestDocumentService_ScheduleDefaultsToHeuristic(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)

	sched, err := f.service.Schedule(context.Background(), doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.CriticalPathHeuristic, sched.Mode)
}

func TestDocumentService_ScheduleRejectsUnknownMode(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)

	_, err := f.service.Schedule(context.Background(), doc.ID, "pert")
	requireSequenceCode(t, err, app.SequenceErrInvalidInput)
}

func TestDocumentService_ScheduleCycleLeavesNothing(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	file := shedEstimate()
	file.Items[1].DependsOn = []string{"Wire outlets"}
	file.Items = append(file.Items, importer.ItemImport{Name: "Wire outlets"})
	res, err := f.imports.ImportDocumentFromSchema(ctx, file)
	require.NoError(t, err)

	_, err = f.service.Schedule(ctx, res.Document.ID, domain.CriticalPathHeuristic)
	requireSequenceCode(t, err, app.SequenceErrCycleDetected)

	n, err := f.schedules.CountByDocument(ctx, res.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	doc, err := f.docs.GetByID(ctx, res.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentDraft, doc.Status)
}

func TestDocumentService_ScheduleRollsBackOnStatusFailure(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)
	ctx := context.Background()

	// 1 schedule header + 3 tasks, then the status update.
	uow := &testutil.FailOnNthExecUoW{DB: f.database, FailOn: 5, Err: errors.New("disk full")}
	_, err := f.serviceWith(uow).Schedule(ctx, doc.ID, domain.CriticalPathHeuristic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	n, err := f.schedules.CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "schedule should be rolled back with the status update")
	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentDraft, stored.Status)
}

func TestDocumentService_ScheduleWithoutItems(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	doc := testutil.NewTestDocument("Empty", testutil.WithShortID("EST0300"))
	require.NoError(t, f.docs.Create(ctx, doc))

	_, err := f.service.Schedule(ctx, doc.ID, "")
	requireDocumentCode(t, err, app.DocumentErrNoLineItems)
}

func TestDocumentService_ConvertChain(t *testing.T) {
	f := newDocumentFixture(t)
	est := f.importShed(t)
	ctx := context.Background()

	toInvoice, err := f.service.Convert(ctx, est.ShortID)
	require.NoError(t, err)
	inv := toInvoice.Document
	assert.Equal(t, domain.KindInvoice, inv.Kind)
	assert.Equal(t, "INV0001", inv.ShortID)
	assert.Equal(t, domain.DocumentDraft, inv.Status)
	require.NotNil(t, inv.SourceID)
	assert.Equal(t, est.ID, *inv.SourceID)
	assert.Equal(t, domain.DocumentConverted, toInvoice.Source.Status)
	assert.Nil(t, toInvoice.Schedule)
	assert.Equal(t, est.SquareFootage, inv.SquareFootage)

	invItems, err := f.items.ListByDocument(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, invItems, 3)
	assert.Equal(t, "Frame walls", invItems[1].Name)
	assert.Equal(t, []string{"Pour footing"}, invItems[1].DependsOn)

	toWorkOrder, err := f.service.Convert(ctx, inv.ShortID)
	require.NoError(t, err)
	wo := toWorkOrder.Document
	assert.Equal(t, domain.KindWorkOrder, wo.Kind)
	assert.Equal(t, "WO0001", wo.ShortID)
	assert.Equal(t, domain.DocumentScheduled, wo.Status)
	require.NotNil(t, toWorkOrder.Schedule, "work orders are sequenced on creation")
	assert.Len(t, toWorkOrder.Schedule.Result.Tasks, 3)

	view, err := f.service.Get(ctx, wo.ShortID)
	require.NoError(t, err)
	require.NotNil(t, view.Schedule)
	assert.Equal(t, toWorkOrder.Schedule.ID, view.Schedule.ID)

	origin, err := f.docs.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentConverted, origin.Status)
}

func TestDocumentService_ConvertRejectsInvalidTransitions(t *testing.T) {
	f := newDocumentFixture(t)
	est := f.importShed(t)
	ctx := context.Background()

	_, err := f.service.Convert(ctx, est.ID)
	require.NoError(t, err)

	_, err = f.service.Convert(ctx, est.ID)
	requireDocumentCode(t, err, app.DocumentErrInvalidTransition)

	file := shedEstimate()
	file.Document.Kind = "work_order"
	wo, err := f.imports.ImportDocumentFromSchema(ctx, file)
	require.NoError(t, err)
	_, err = f.service.Convert(ctx, wo.Document.ShortID)
	requireDocumentCode(t, err, app.DocumentErrInvalidTransition)

	_, err = f.service.Convert(ctx, "EST0999")
	requireDocumentCode(t, err, app.DocumentErrNotFound)
}

func TestDocumentService_ConvertRollsBackOnEveryWrite(t *testing.T) {
	// An invoice converting into a work order takes the longest write path:
	// new document, copied items, source status, then the schedule.
	invoiceFixture := func(t *testing.T) (*documentFixture, *domain.Document) {
		f := newDocumentFixture(t)
		est := f.importShed(t)
		res, err := f.service.Convert(context.Background(), est.ID)
		require.NoError(t, err)
		return f, res.Document
	}

	f, inv := invoiceFixture(t)
	counter := &testutil.FailOnNthExecUoW{DB: f.database}
	_, err := f.serviceWith(counter).Convert(context.Background(), inv.ID)
	require.NoError(t, err)
	writes := counter.Execs()
	require.Greater(t, writes, 5)

	for n := 1; n <= writes; n++ {
		f, inv := invoiceFixture(t)
		ctx := context.Background()
		uow := &testutil.FailOnNthExecUoW{DB: f.database, FailOn: int32(n), Err: errors.New("injected")}

		_, err := f.serviceWith(uow).Convert(ctx, inv.ID)
		require.Error(t, err, "write %d", n)

		kind := domain.KindWorkOrder
		orders, err := f.docs.List(ctx, &kind)
		require.NoError(t, err)
		assert.Empty(t, orders, "write %d: work order should be rolled back", n)

		stored, err := f.docs.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentDraft, stored.Status, "write %d: source status should be rolled back", n)

		var schedules int
		require.NoError(t, f.database.QueryRow(`SELECT COUNT(*) FROM schedules`).Scan(&schedules))
		assert.Equal(t, 0, schedules, "write %d", n)
	}
}

func TestDocumentService_ExportRoundTrips(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.importShed(t)
	ctx := context.Background()

	file, err := f.service.Export(ctx, doc.ShortID)
	require.NoError(t, err)
	assert.Equal(t, "EST0001", file.Document.ShortID)
	assert.Equal(t, "estimate", file.Document.Kind)
	require.Len(t, file.Items, 3)
	assert.Equal(t, []string{"Pour footing"}, file.Items[1].DependsOn)

	// Re-importing the export under a new ID gives the same items.
	file.Document.ShortID = ""
	res, err := f.imports.ImportDocumentFromSchema(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "EST0002", res.Document.ShortID)
	assert.Equal(t, 3, res.LineItemCount)
}

func TestDocumentService_ListAndDelete(t *testing.T) {
	f := newDocumentFixture(t)
	est := f.importShed(t)
	ctx := context.Background()
	_, err := f.service.Convert(ctx, est.ID)
	require.NoError(t, err)

	all, err := f.service.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kind := domain.KindInvoice
	invoices, err := f.service.List(ctx, &kind)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	require.NoError(t, f.service.Delete(ctx, invoices[0].ShortID))
	_, err = f.service.Get(ctx, invoices[0].ShortID)
	requireDocumentCode(t, err, app.DocumentErrNotFound)

	err = f.service.Delete(ctx, "INV0404")
	requireDocumentCode(t, err, app.DocumentErrNotFound)
}
