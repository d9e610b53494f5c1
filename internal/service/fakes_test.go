package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kasraf/service-desk/internal/model"
	"github.com/kasraf/service-desk/internal/repository"
)

// In-memory fakes for the repository interfaces. The token fakes reproduce
// the conditional-update semantics of the SQL stores: redemption is guarded
// by a mutex and flips the row exactly once, so concurrency tests exercise
// the same single-winner behavior the database enforces.

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, rows: make(map[uint64]model.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	id := f.nextID
	f.nextID++
	cp := *u
	cp.ID = id
	cp.CreatedAt = time.Now().UTC()
	f.rows[id] = cp
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == email {
			return row, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return row, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.PasswordHash = hash
	f.rows[id] = row
	return nil
}

func (f *fakeUsers) SetEmailVerified(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.EmailVerified = true
	f.rows[id] = row
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id uint64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.IsActive = active
	f.rows[id] = row
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	row.LastLoginAt = &now
	f.rows[id] = row
	return nil
}

func (f *fakeUsers) List(_ context.Context, _, _ int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	return out, nil
}

type refreshRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeTokens struct {
	mu   sync.Mutex
	rows map[string]*refreshRow
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: make(map[string]*refreshRow)}
}

func (f *fakeTokens) Store(_ context.Context, userID uint64, hash, _, _ string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[hash] = &refreshRow{userID: userID, exp: exp}
	return nil
}

func (f *fakeTokens) Redeem(_ context.Context, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[hash]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if row.revoked {
		return 0, repository.ErrTokenUsed
	}
	if time.Now().UTC().After(row.exp) {
		return 0, repository.ErrTokenExpired
	}
	row.revoked = true
	return row.userID, nil
}

func (f *fakeTokens) Revoke(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[hash]; ok {
		row.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.userID == userID {
			row.revoked = true
		}
	}
	return nil
}

// live reports how many unexpired, unrevoked tokens a user holds.
func (f *fakeTokens) live(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.userID == userID && !row.revoked && time.Now().UTC().Before(row.exp) {
			n++
		}
	}
	return n
}

type onetimeRow struct {
	userID uint64
	token  string
	otp    string
	exp    time.Time
	used   bool
}

type fakeOneTime struct {
	mu            sync.Mutex
	verifications []*onetimeRow
	resets        []*onetimeRow
}

func newFakeOneTime() *fakeOneTime { return &fakeOneTime{} }

func (f *fakeOneTime) CreateVerification(_ context.Context, userID uint64, token, otp string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, &onetimeRow{userID: userID, token: token, otp: otp, exp: exp})
	return nil
}

func redeemRow(rows []*onetimeRow, match func(*onetimeRow) bool) (uint64, error) {
	var found *onetimeRow
	for _, row := range rows {
		if match(row) {
			found = row
			break
		}
	}
	if found == nil {
		return 0, repository.ErrNotFound
	}
	if found.used {
		return 0, repository.ErrTokenUsed
	}
	if time.Now().UTC().After(found.exp) {
		return 0, repository.ErrTokenExpired
	}
	found.used = true
	return found.userID, nil
}

func (f *fakeOneTime) RedeemVerificationByToken(_ context.Context, token string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redeemRow(f.verifications, func(r *onetimeRow) bool { return r.token == token })
}

func (f *fakeOneTime) RedeemVerificationByOTP(_ context.Context, userID uint64, otp string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redeemRow(f.verifications, func(r *onetimeRow) bool { return r.userID == userID && r.otp == otp })
}

func (f *fakeOneTime) InvalidateVerificationsForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.verifications {
		if row.userID == userID {
			row.used = true
		}
	}
	return nil
}

func (f *fakeOneTime) CreateReset(_ context.Context, userID uint64, token string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, &onetimeRow{userID: userID, token: token, exp: exp})
	return nil
}

func (f *fakeOneTime) RedeemReset(_ context.Context, token string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redeemRow(f.resets, func(r *onetimeRow) bool { return r.token == token })
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

func (f *fakeActivity) Append(_ context.Context, entry *model.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeNotes struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (f *fakeNotes) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	cp.ID = uint64(len(f.rows) + 1)
	cp.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, cp)
	return nil
}

func (f *fakeNotes) ListForUser(_ context.Context, userID uint64, _, _ int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) MarkRead(_ context.Context, id, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			now := time.Now().UTC()
			f.rows[i].ReadAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotes) forUser(userID uint64) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// sentMail captures what the service asked the mailer to deliver.
type sentMail struct {
	kind string
	to   string
	link string
	otp  string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendVerification(_ context.Context, to, _, link, otp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: "verification", to: to, link: link, otp: otp})
	return nil
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: "password_reset", to: to, link: link})
	return nil
}

func (f *fakeMailer) last() (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// tokenFromLink pulls the opaque token out of a verification or reset link.
func tokenFromLink(link string) string {
	if i := strings.LastIndex(link, "token="); i >= 0 {
		return link[i+len("token="):]
	}
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return ""
}

type requestRow struct {
	req      model.ServiceRequest
	comments []model.RequestComment
}

type fakeRequests struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*requestRow
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{nextID: 1, rows: make(map[uint64]*requestRow)}
}

func (f *fakeRequests) Create(_ context.Context, r *model.ServiceRequest) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	cp := *r
	cp.ID = id
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.rows[id] = &requestRow{req: cp}
	return id, nil
}

func (f *fakeRequests) GetByID(_ context.Context, id uint64) (model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return model.ServiceRequest{}, repository.ErrNotFound
	}
	return row.req, nil
}

func (f *fakeRequests) List(_ context.Context, filter repository.RequestFilter) ([]model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ServiceRequest
	for _, row := range f.rows {
		r := row.req
		if filter.RequesterID != 0 && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && r.Priority != filter.Priority {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id uint64, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if row.req.Status != from {
		return repository.ErrConflict
	}
	row.req.Status = to
	row.req.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRequests) Assign(_ context.Context, id, assigneeID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.req.AssigneeID = &assigneeID
	return nil
}

func (f *fakeRequests) AddComment(_ context.Context, c *model.RequestComment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[c.RequestID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	id := uint64(len(row.comments) + 1)
	cp := *c
	cp.ID = id
	cp.CreatedAt = time.Now().UTC()
	row.comments = append(row.comments, cp)
	return id, nil
}

func (f *fakeRequests) ListComments(_ context.Context, requestID uint64) ([]model.RequestComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[requestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]model.RequestComment(nil), row.comments...), nil
}
