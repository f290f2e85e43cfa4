package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

type testEnv struct {
	Repo   *repo.GormRepo
	Events *events.Recorder
	Cat    models.Category
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.Options{Driver: pkgdb.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := repo.New(db)
	require.NoError(t, r.Migrate(context.Background()))

	cat := models.Category{Name: "Tools", Slug: "tools"}
	require.NoError(t, r.CreateCategory(context.Background(), &cat))

	return &testEnv{Repo: r, Events: events.NewRecorder(), Cat: cat}
}

func (e *testEnv) auth() *AuthService {
	return &AuthService{Repo: e.Repo, Events: e.Events, JWTSecret: []byte("test-secret"), SessionTTL: time.Hour}
}

func (e *testEnv) catalog() *CatalogService {
	return &CatalogService{Repo: e.Repo, Events: e.Events}
}

func (e *testEnv) product(t *testing.T, slug string) *models.Product {
	t.Helper()
	p, err := e.catalog().CreateProduct(context.Background(), transport.ProductInput{
		CategoryID: e.Cat.ID, Slug: slug, Name: strings.ToUpper(slug), Price: 9.5,
	})
	require.NoError(t, err)
	return p
}

func countUsers(t *testing.T, r *repo.GormRepo) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestSignUp_Validation(t *testing.T) {
	env := newEnv(t)
	svc := env.auth()
	ctx := context.Background()

	cases := []struct {
		name                      string
		email, password, userName string
		role                      string
		kind                      error
	}{
		{"missing email", "", "secret1", "Ann", "", ErrValidation},
		{"missing name", "ann@example.com", "secret1", "", "", ErrValidation},
		{"short password", "ann@example.com", "12345", "Ann", "", ErrValidation},
		{"password over bcrypt limit", "ann@example.com", strings.Repeat("p", 73), "Ann", "", ErrValidation},
		{"malformed email", "ann.example.com", "secret1", "Ann", "", ErrValidation},
		{"unknown role", "ann@example.com", "secret1", "Ann", "root", ErrValidation},
		{"admin disabled", "ann@example.com", "secret1", "Ann", "admin", ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tc.email, tc.password, tc.userName, tc.role)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), err)
		})
	}
	assert.EqualValues(t, 0, countUsers(t, env.Repo))
	assert.Empty(t, env.Events.Events(events.TopicUsers))
}

func TestSignUp_CreatesCustomer(t *testing.T) {
	env := newEnv(t)
	svc := env.auth()
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  Ann@Example.com ", "secret1", "Ann", "")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Equal(t, []string{"user_signed_up"}, env.Events.Types(events.TopicUsers))

	_, err = svc.SignUp(ctx, "ann@example.com", "another1", "Ann 2", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "email already registered", Message(err))
	assert.EqualValues(t, 1, countUsers(t, env.Repo))
}

func TestSignUp_AdminWhenAllowed(t *testing.T) {
	env := newEnv(t)
	svc := env.auth()
	svc.AllowAdminSignUp = true

	u, err := svc.SignUp(context.Background(), "boss@example.com", "secret1", "Boss", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestSignIn(t *testing.T) {
	env := newEnv(t)
	svc := env.auth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ann@example.com", "secret1", "Ann", "")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "ann@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)

	res, err := svc.SignIn(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
	assert.Contains(t, env.Events.Types(events.TopicUsers), "user_signed_in")

	u := svc.GetSession(ctx, res.Token)
	require.NotNil(t, u)
	assert.Equal(t, res.User.ID, u.ID)
}

func TestGetSession_ResolvesToNil(t *testing.T) {
	env := newEnv(t)
	svc := env.auth()
	ctx := context.Background()

	assert.Nil(t, svc.GetSession(ctx, ""))
	assert.Nil(t, svc.GetSession(ctx, "not-a-token"))

	ghost := &models.User{ID: 999, Role: models.RoleCustomer}
	token, _, err := svc.IssueSession(ghost)
	require.NoError(t, err)
	assert.Nil(t, svc.GetSession(ctx, token))

	other := &AuthService{Repo: env.Repo, JWTSecret: []byte("other"), SessionTTL: time.Hour}
	u, err := svc.SignUp(ctx, "ann@example.com", "secret1", "Ann", "")
	require.NoError(t, err)
	forged, _, err := other.IssueSession(u)
	require.NoError(t, err)
	assert.Nil(t, svc.GetSession(ctx, forged))
}

func TestBulkUpsert_PartialSuccess(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	ctx := context.Background()

	in := []transport.ProductInput{
		{CategoryID: env.Cat.ID, Slug: "hammer", Name: "Hammer", Price: 10},
		{CategoryID: env.Cat.ID, Slug: "saw", Name: "Saw", Price: 20},
		{CategoryID: 4040, Slug: "ghost", Name: "Ghost", Price: 5},
		{CategoryID: env.Cat.ID, Slug: "drill", Name: "Drill", Price: 30},
	}
	res, err := svc.BulkUpsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Success)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Index)
	assert.Equal(t, "ghost", res.Errors[0].Slug)
	require.Len(t, res.Results, 3)
	assert.Equal(t, 3, res.Results[2].Index)
	assert.Len(t, env.Events.Events(events.TopicProducts), 3)

	in[0].Price = 12
	res, err = svc.BulkUpsert(ctx, in[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)

	p, err := svc.GetProduct(ctx, "hammer")
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.Price)

	_, err = svc.BulkUpsert(ctx, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, transport.ProductInput{CategoryID: env.Cat.ID, Slug: "x", Name: "X", Price: -1})
	require.ErrorIs(t, err, ErrValidation)

	env.product(t, "level")
	_, err = svc.CreateProduct(ctx, transport.ProductInput{CategoryID: env.Cat.ID, Slug: "level", Name: "Level", Price: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetProduct(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProducts_DatabaseFallback(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	env.product(t, "claw-hammer")
	env.product(t, "saw")

	_, _, err := svc.SearchProducts(context.Background(), "  ", 0, 10)
	require.ErrorIs(t, err, ErrValidation)

	total, prods, err := svc.SearchProducts(context.Background(), "hammer", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "claw-hammer", prods[0].Slug)
}

func workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func TestImportSpreadsheet(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	cat := env.Cat.ID

	data := workbook(t, [][]string{
		{"slug", "name", "price", "category_id", "is_active"},
		{"hammer", "Hammer", "10.5", itoa(cat), "true"},
		{"saw", "Saw", "abc", itoa(cat), ""},
		{"ghost", "Ghost", "3", "999", ""},
	})

	res, err := svc.ImportSpreadsheet(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, "invalid price", res.Errors[0].Error)
	assert.Equal(t, 2, res.Errors[1].Index)

	_, err = svc.ImportSpreadsheet(context.Background(), bytes.NewReader([]byte("nope")), 4)
	require.ErrorIs(t, err, ErrValidation)

	missing := workbook(t, [][]string{{"slug", "name"}, {"a", "A"}})
	_, err = svc.ImportSpreadsheet(context.Background(), bytes.NewReader(missing), int64(len(missing)))
	require.ErrorIs(t, err, ErrValidation)
}

func TestImportSpreadsheet_ReportsSheetRows(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	cat := env.Cat.ID

	data := workbook(t, [][]string{
		{"slug", "name", "price", "category_id"},
		{"hammer", "Hammer", "10", itoa(cat)},
		{"", "", "", ""},
		{"saw", "Saw", "-1", itoa(cat)},
	})

	res, err := svc.ImportSpreadsheet(context.Background(), bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 2, res.Results[0].Row)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, "price cannot be negative", res.Errors[0].Error)

	viaJSON, err := svc.BulkUpsert(context.Background(), []transport.ProductInput{{Name: "x"}})
	require.NoError(t, err)
	require.Len(t, viaJSON.Errors, 1)
	assert.Zero(t, viaJSON.Errors[0].Row)
}

func TestExportSpreadsheet_RoundTrip(t *testing.T) {
	env := newEnv(t)
	svc := env.catalog()
	env.product(t, "hammer")
	env.product(t, "saw")

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSpreadsheet(context.Background(), &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Equal(t, 3, file.Sheets[0].MaxRow)
	assert.Equal(t, "id", file.Sheets[0].Rows[0].Cells[0].String())

	res, err := svc.ImportSpreadsheet(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 0, res.Failed)
}

func TestCart_ScopedToOwner(t *testing.T) {
	env := newEnv(t)
	svc := &CartService{Repo: env.Repo, Events: env.Events}
	ctx := context.Background()
	p := env.product(t, "hammer")

	item, err := svc.AddToCart(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, item.Quantity)

	_, err = svc.AddToCart(ctx, 1, 4040, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateQuantity(ctx, 2, item.ID, 3)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.RemoveItem(ctx, 2, item.ID), ErrNotFound)

	_, err = svc.UpdateQuantity(ctx, 1, item.ID, 0)
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateQuantity(ctx, 1, item.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated.Quantity)

	require.NoError(t, svc.RemoveItem(ctx, 1, item.ID))
	assert.Equal(t, []string{"cart_item_added", "cart_item_updated", "cart_item_removed"}, env.Events.Types(events.TopicCart))
}

func TestWishlist_ScopedToOwner(t *testing.T) {
	env := newEnv(t)
	svc := &WishlistService{Repo: env.Repo, Events: env.Events}
	ctx := context.Background()
	p := env.product(t, "hammer")

	item, err := svc.Add(ctx, 1, p.ID)
	require.NoError(t, err)
	again, err := svc.Add(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)

	require.ErrorIs(t, svc.Remove(ctx, 2, item.ID), ErrNotFound)
	require.NoError(t, svc.Remove(ctx, 1, item.ID))
}

func TestBundle_RemoveItem(t *testing.T) {
	env := newEnv(t)
	svc := &BundleService{Repo: env.Repo, Events: env.Events}
	ctx := context.Background()
	p := env.product(t, "hammer")

	b, err := svc.Create(ctx, transport.CreateBundleRequest{Name: "Starter", Slug: "starter", Price: 15})
	require.NoError(t, err)
	other, err := svc.Create(ctx, transport.CreateBundleRequest{Name: "Other", Slug: "other"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, 4040, transport.AddBundleItemRequest{ProductID: p.ID})
	require.ErrorIs(t, err, ErrNotFound)

	item, err := svc.AddItem(ctx, b.ID, transport.AddBundleItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	require.ErrorIs(t, svc.RemoveItem(ctx, other.ID, item.ID), ErrNotFound)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	require.NoError(t, svc.RemoveItem(ctx, b.ID, item.ID))
	require.ErrorIs(t, svc.RemoveItem(ctx, b.ID, item.ID), ErrNotFound)
}

func TestDiscount_ActiveWindow(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := &DiscountService{Repo: env.Repo, Events: env.Events, Now: func() time.Time { return now }}
	ctx := context.Background()

	d, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = svc.Create(ctx, transport.CreateDiscountRequest{Name: "bad", Percentage: 150, StartDate: now, EndDate: now})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, transport.CreateDiscountRequest{Name: "bad", Percentage: 10, StartDate: now, EndDate: now.Add(-time.Hour)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, transport.CreateDiscountRequest{Name: "later", Percentage: 10,
		StartDate: now.Add(24 * time.Hour), EndDate: now.Add(48 * time.Hour)})
	require.NoError(t, err)

	d, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = svc.Create(ctx, transport.CreateDiscountRequest{Name: "edge", Percentage: 5,
		StartDate: now, EndDate: now})
	require.NoError(t, err)

	d, err = svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "edge", d.Name)
}

func TestProfile_Update(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	u, err := env.auth().SignUp(ctx, "ann@example.com", "secret1", "Ann", "")
	require.NoError(t, err)

	svc := &ProfileService{Repo: env.Repo}
	city := "Berlin"
	updated, err := svc.Update(ctx, u.ID, transport.UpdateProfileRequest{City: &city})
	require.NoError(t, err)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Berlin", *updated.City)
	assert.Equal(t, "Ann", updated.Name)

	empty := " "
	_, err = svc.Update(ctx, u.ID, transport.UpdateProfileRequest{Name: &empty})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUpload_EncodeImage(t *testing.T) {
	svc := &UploadService{}

	res, err := svc.EncodeImage(bytes.NewReader(pngHeader), "Photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "data:image/png;base64,"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.EqualValues(t, len(pngHeader), res.Size)

	_, err = svc.EncodeImage(strings.NewReader("just some text"), "notes.png")
	require.ErrorIs(t, err, ErrValidation)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadSize)...)
	_, err = svc.EncodeImage(bytes.NewReader(big), "big.png")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "file is larger than 5MB", Message(err))
}

func itoa(id uint) string {
	return idKey(id)
}
