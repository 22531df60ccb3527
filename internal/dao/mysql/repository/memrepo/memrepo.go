// Package memrepo 提供 repository 接口的内存实现，供 Service 层单元测试使用
// 模拟了唯一索引（手机号、用户名、联系请求对、刷新令牌）和外键级联删除
package memrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"

	"github.com/google/uuid"
)

// Store 所有表共享的内存存储
type Store struct {
	mu      sync.Mutex
	clock   time.Time
	users   map[string]*model.User
	codes   map[string]*model.VerificationCode
	tokens  map[string]*model.RefreshToken
	profile map[string]*model.Profile
	photos  map[string]*model.Photo
	reqs    map[string]*model.ContactRequest
	msgs    map[string]*model.Message
	alerts  map[string]*model.SearchAlert
	audits  []model.AuditLog
}

// New 返回基于同一 Store 的 Repositories 以及 Store 本身（测试中可直接断言）
func New() (*repository.Repositories, *Store) {
	s := &Store{
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:   map[string]*model.User{},
		codes:   map[string]*model.VerificationCode{},
		tokens:  map[string]*model.RefreshToken{},
		profile: map[string]*model.Profile{},
		photos:  map[string]*model.Photo{},
		reqs:    map[string]*model.ContactRequest{},
		msgs:    map[string]*model.Message{},
		alerts:  map[string]*model.SearchAlert{},
	}
	return &repository.Repositories{
		User:             &userRepo{s},
		VerificationCode: &codeRepo{s},
		RefreshToken:     &tokenRepo{s},
		Profile:          &profileRepo{s},
		Photo:            &photoRepo{s},
		ContactRequest:   &contactRepo{s},
		Message:          &messageRepo{s},
		SearchAlert:      &alertRepo{s},
		AuditLog:         &auditRepo{s},
	}, s
}

// tick 单调递增的时间，保证按创建时间排序稳定
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Store) stamp(b *model.Base) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.tick()
	b.CreatedAt = now
	b.UpdatedAt = now
}

func notFound(msg string) error { return errorx.New(errorx.CodeNotFound, msg) }
func conflict(msg string) error { return errorx.New(errorx.CodeConflict, msg) }

// Photos 测试辅助：某档案的全部照片（按上传时间升序）
func (s *Store) Photos(profileID string) []model.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photosOf(profileID)
}

// AuditLogs 测试辅助：全部审计日志
func (s *Store) AuditLogs() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.audits...)
}

// ContactRequestCount 测试辅助
func (s *Store) ContactRequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

// MessageCount 测试辅助
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// RefreshTokenCount 测试辅助
func (s *Store) RefreshTokenCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// ExpireRefreshToken 测试辅助：把令牌改为已过期
func (s *Store) ExpireRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Token == token {
			t.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

// ExpireCodes 测试辅助：让某用户的全部验证码过期
func (s *Store) ExpireCodes(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.UserID == userID {
			c.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

func (s *Store) photosOf(profileID string) []model.Photo {
	var out []model.Photo
	for _, p := range s.photos {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) primaryOf(profileID string) []model.Photo {
	var out []model.Photo
	for _, p := range s.photosOf(profileID) {
		if p.IsPrimary {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) messagesOf(requestID string) []model.Message {
	var out []model.Message
	for _, m := range s.msgs {
		if m.ContactRequestID == requestID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ==================== 级联删除 ====================

func (s *Store) deleteRequest(id string) {
	for mid, m := range s.msgs {
		if m.ContactRequestID == id {
			delete(s.msgs, mid)
		}
	}
	delete(s.reqs, id)
}

func (s *Store) deleteProfile(id string) {
	for pid, p := range s.photos {
		if p.ProfileID == id {
			delete(s.photos, pid)
		}
	}
	for rid, r := range s.reqs {
		if r.ToProfileID == id {
			s.deleteRequest(rid)
		}
	}
	delete(s.profile, id)
}

func (s *Store) deleteUser(id string) {
	for pid, p := range s.profile {
		if p.UserID == id {
			s.deleteProfile(pid)
		}
	}
	for rid, r := range s.reqs {
		if r.FromUserID == id {
			s.deleteRequest(rid)
		}
	}
	for mid, m := range s.msgs {
		if m.SenderID == id {
			delete(s.msgs, mid)
		}
	}
	for aid, a := range s.alerts {
		if a.UserID == id {
			delete(s.alerts, aid)
		}
	}
	for tid, t := range s.tokens {
		if t.UserID == id {
			delete(s.tokens, tid)
		}
	}
	for cid, c := range s.codes {
		if c.UserID == id {
			delete(s.codes, cid)
		}
	}
	delete(s.users, id)
}

// ==================== User ====================

type userRepo struct{ s *Store }

func (r *userRepo) FindByID(id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, notFound("User not found")
}

func (r *userRepo) FindByPhone(phone string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("User not found")
}

func (r *userRepo) LockByID(id string) (*model.User, error) {
	return r.FindByID(id)
}

func (r *userRepo) FindStaffByUsername(username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username != nil && *u.Username == username && u.Role.IsStaff() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("Staff user not found")
}

func (r *userRepo) UsernameTaken(username, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && u.Username != nil && *u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) checkUnique(u *model.User) error {
	for _, other := range r.s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Phone == u.Phone {
			return conflict("Phone already registered")
		}
		if u.Username != nil && other.Username != nil && *u.Username == *other.Username {
			return conflict("Username already taken")
		}
	}
	return nil
}

func (r *userRepo) hash(u *model.User) error {
	if u.Role == "" {
		u.Role = "user"
	}
	if u.RawPassword != "" {
		return u.SetPassword(u.RawPassword)
	}
	return nil
}

func (r *userRepo) Create(u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&u.Base)
	if err := r.checkUnique(u); err != nil {
		return err
	}
	if err := r.hash(u); err != nil {
		return err
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) Save(u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		r.s.stamp(&u.Base)
	} else {
		u.UpdatedAt = r.s.tick()
	}
	if err := r.checkUnique(u); err != nil {
		return err
	}
	if err := r.hash(u); err != nil {
		return err
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) MarkPhoneVerified(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.PhoneVerified = true
	}
	return nil
}

func (r *userRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return notFound("User not found")
	}
	r.s.deleteUser(id)
	return nil
}

func (r *userRepo) match(u *model.User, f model.UserFilter) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Banned != nil && u.IsBanned != *f.Banned {
		return false
	}
	if f.Search != "" {
		name := ""
		if u.Username != nil {
			name = strings.ToLower(*u.Username)
		}
		if !strings.Contains(u.Phone, f.Search) && !strings.Contains(name, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

func (r *userRepo) List(f model.UserFilter, offset, limit int) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, u := range r.s.users {
		if r.match(u, f) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

func (r *userRepo) CountProfiles(userIDs []string) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int64{}
	for _, id := range userIDs {
		for _, p := range r.s.profile {
			if p.UserID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (r *userRepo) Count(f model.UserFilter) (int64, error) {
	_, total, err := r.List(f, 0, 0)
	return total, err
}

func (r *userRepo) CountCreatedSince(f model.UserFilter, since time.Time) (int64, error) {
	users, _, _ := r.List(f, 0, 0)
	var n int64
	for _, u := range users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ==================== VerificationCode ====================

type codeRepo struct{ s *Store }

func (r *codeRepo) Create(c *model.VerificationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&c.Base)
	cp := *c
	r.s.codes[c.ID] = &cp
	return nil
}

func (r *codeRepo) InvalidateUnused(userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.UserID == userID {
			c.Used = true
		}
	}
	return nil
}

func (r *codeRepo) FindValid(userID, code string, now time.Time) (*model.VerificationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.UserID == userID && c.Code == code && !c.Used && c.ExpiresAt.After(now) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("Verification code not found")
}

func (r *codeRepo) MarkUsed(id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[id]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	return true, nil
}

// ==================== RefreshToken ====================

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(t *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.tokens {
		if other.Token == t.Token {
			return conflict("Duplicate refresh token")
		}
	}
	r.s.stamp(&t.Base)
	cp := *t
	r.s.tokens[t.ID] = &cp
	return nil
}

func (r *tokenRepo) FindByToken(token string) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("Refresh token not found")
}

func (r *tokenRepo) DeleteByToken(token string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if t.Token == token {
			delete(r.s.tokens, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *tokenRepo) DeleteByUser(userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

func (r *tokenRepo) DeleteExpired(now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if t.Expired(now) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// ==================== Profile ====================

type profileRepo struct{ s *Store }

func (r *profileRepo) Create(p *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.UserID]; !ok {
		return notFound("User not found")
	}
	r.s.stamp(&p.Base)
	cp := *p
	cp.Photos = nil
	r.s.profile[p.ID] = &cp
	return nil
}

func (r *profileRepo) get(id string) (*model.Profile, error) {
	p, ok := r.s.profile[id]
	if !ok {
		return nil, notFound("Profile not found")
	}
	cp := *p
	return &cp, nil
}

func (r *profileRepo) FindByID(id string) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id)
}

func (r *profileRepo) FindByIDWithPhotos(id string) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	p.Photos = r.s.photosOf(id)
	return p, nil
}

func (r *profileRepo) LockByID(id string) (*model.Profile, error) {
	return r.FindByID(id)
}

// Updates 只支持 Service 层实际使用的列
func (r *profileRepo) Updates(id string, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profile[id]
	if !ok {
		return notFound("Profile not found")
	}
	for col, v := range fields {
		applyProfileColumn(p, col, v)
	}
	p.UpdatedAt = r.s.tick()
	return nil
}

func (r *profileRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profile[id]; !ok {
		return notFound("Profile not found")
	}
	r.s.deleteProfile(id)
	return nil
}

func matchProfile(p *model.Profile, f model.ProfileFilter) bool {
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Region != "" && p.Region != f.Region {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.BirthYearFrom != nil && (p.BirthYear == nil || *p.BirthYear < *f.BirthYearFrom) {
		return false
	}
	if f.BirthYearTo != nil && (p.BirthYear == nil || *p.BirthYear > *f.BirthYearTo) {
		return false
	}
	if f.BirthMonth != nil && (p.BirthMonth == nil || *p.BirthMonth != *f.BirthMonth) {
		return false
	}
	if f.BirthDay != nil && (p.BirthDay == nil || *p.BirthDay != *f.BirthDay) {
		return false
	}
	if f.MaternityHospital != "" && p.MaternityHospital != f.MaternityHospital {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hit := false
		for _, field := range []string{p.FirstName, p.LastName, p.BirthPlace, p.Story} {
			if strings.Contains(strings.ToLower(field), s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (r *profileRepo) matching(f model.ProfileFilter) []model.Profile {
	var out []model.Profile
	for _, p := range r.s.profile {
		if matchProfile(p, f) {
			cp := *p
			cp.Photos = r.s.primaryOf(p.ID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *profileRepo) Search(f model.ProfileFilter, offset, limit int) ([]model.Profile, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.matching(f)
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *profileRepo) FindByUser(userID string) ([]model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Profile
	for _, p := range r.matching(model.ProfileFilter{}) {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *profileRepo) Count(f model.ProfileFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(f))), nil
}

func (r *profileRepo) CountCreatedSince(since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.profile {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ==================== Photo ====================

type photoRepo struct{ s *Store }

func (r *photoRepo) Create(p *model.Photo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profile[p.ProfileID]; !ok {
		return notFound("Profile not found")
	}
	r.s.stamp(&p.Base)
	cp := *p
	r.s.photos[p.ID] = &cp
	return nil
}

func (r *photoRepo) FindByID(id string) (*model.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.photos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, notFound("Photo not found")
}

func (r *photoRepo) FindByProfile(profileID string) ([]model.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.photosOf(profileID), nil
}

func (r *photoRepo) FindByProfiles(profileIDs []string) ([]model.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Photo
	for _, id := range profileIDs {
		out = append(out, r.s.photosOf(id)...)
	}
	return out, nil
}

func (r *photoRepo) CountByProfile(profileID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.photosOf(profileID))), nil
}

func (r *photoRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.photos[id]; !ok {
		return notFound("Photo not found")
	}
	delete(r.s.photos, id)
	return nil
}

func (r *photoRepo) FindOldest(profileID string) (*model.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	photos := r.s.photosOf(profileID)
	if len(photos) == 0 {
		return nil, notFound("Photo not found")
	}
	return &photos[0], nil
}

func (r *photoRepo) ClearPrimary(profileID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.photos {
		if p.ProfileID == profileID {
			p.IsPrimary = false
		}
	}
	return nil
}

func (r *photoRepo) SetPrimary(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.photos[id]; ok {
		p.IsPrimary = true
	}
	return nil
}

// ==================== ContactRequest ====================

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(req *model.ContactRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profile[req.ToProfileID]; !ok {
		return notFound("Profile not found")
	}
	for _, other := range r.s.reqs {
		if other.FromUserID == req.FromUserID && other.ToProfileID == req.ToProfileID {
			return conflict("Contact request already sent")
		}
	}
	if req.Status == "" {
		req.Status = model.ContactPending
	}
	r.s.stamp(&req.Base)
	cp := *req
	cp.FromUser, cp.ToProfile, cp.Messages = nil, nil, nil
	r.s.reqs[req.ID] = &cp
	return nil
}

func (r *contactRepo) withProfile(cr *model.ContactRequest) model.ContactRequest {
	cp := *cr
	if p, ok := r.s.profile[cr.ToProfileID]; ok {
		pc := *p
		cp.ToProfile = &pc
	}
	return cp
}

func (r *contactRepo) FindByID(id string) (*model.ContactRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.reqs[id]
	if !ok {
		return nil, notFound("Contact request not found")
	}
	cp := r.withProfile(cr)
	return &cp, nil
}

func (r *contactRepo) UpdateStatusIfPending(id string, status model.ContactStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.reqs[id]
	if !ok || cr.Status != model.ContactPending {
		return false, nil
	}
	cr.Status = status
	cr.UpdatedAt = r.s.tick()
	return true, nil
}

func (r *contactRepo) Touch(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cr, ok := r.s.reqs[id]; ok {
		cr.UpdatedAt = r.s.tick()
	}
	return nil
}

func (r *contactRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reqs[id]; !ok {
		return notFound("Contact request not found")
	}
	r.s.deleteRequest(id)
	return nil
}

func (r *contactRepo) sortByActivity(list []model.ContactRequest) {
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
}

func (r *contactRepo) ListSent(userID string) ([]model.ContactRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ContactRequest
	for _, cr := range r.s.reqs {
		if cr.FromUserID != userID {
			continue
		}
		cp := r.withProfile(cr)
		if cp.ToProfile != nil {
			cp.ToProfile.Photos = r.s.primaryOf(cp.ToProfileID)
		}
		cp.Messages = r.s.messagesOf(cr.ID)
		out = append(out, cp)
	}
	r.sortByActivity(out)
	return out, nil
}

func (r *contactRepo) ListReceived(userID string) ([]model.ContactRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ContactRequest
	for _, cr := range r.s.reqs {
		p, ok := r.s.profile[cr.ToProfileID]
		if !ok || p.UserID != userID {
			continue
		}
		cp := r.withProfile(cr)
		if u, ok := r.s.users[cr.FromUserID]; ok {
			uc := *u
			cp.FromUser = &uc
		}
		cp.Messages = r.s.messagesOf(cr.ID)
		out = append(out, cp)
	}
	r.sortByActivity(out)
	return out, nil
}

func (r *contactRepo) CountByProfiles(profileIDs []string) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int64{}
	for _, id := range profileIDs {
		for _, cr := range r.s.reqs {
			if cr.ToProfileID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (r *contactRepo) Count(status model.ContactStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, cr := range r.s.reqs {
		if status == "" || cr.Status == status {
			n++
		}
	}
	return n, nil
}

// ==================== Message ====================

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(m *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reqs[m.ContactRequestID]; !ok {
		return notFound("Contact request not found")
	}
	r.s.stamp(&m.Base)
	cp := *m
	cp.Sender = nil
	r.s.msgs[m.ID] = &cp
	return nil
}

func (r *messageRepo) FindByID(id string) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.msgs[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, notFound("Message not found")
}

func (r *messageRepo) ListByRequest(requestID string) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.messagesOf(requestID), nil
}

func (r *messageRepo) MarkRead(requestID, readerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.msgs {
		if m.ContactRequestID == requestID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *messageRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.msgs[id]; !ok {
		return notFound("Message not found")
	}
	delete(r.s.msgs, id)
	return nil
}

func (r *messageRepo) List(f model.MessageFilter, offset, limit int) ([]model.Message, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Message
	for _, m := range r.s.msgs {
		if f.ContactRequestID != "" && m.ContactRequestID != f.ContactRequestID {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

func (r *messageRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.msgs)), nil
}

// ==================== SearchAlert ====================

type alertRepo struct{ s *Store }

func (r *alertRepo) Create(a *model.SearchAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&a.Base)
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *alertRepo) FindByID(id string) (*model.SearchAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.alerts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, notFound("Alert not found")
}

func (r *alertRepo) ListByUser(userID string) ([]model.SearchAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.SearchAlert
	for _, a := range r.s.alerts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *alertRepo) CountByUser(userID string) (int64, error) {
	list, _ := r.ListByUser(userID)
	return int64(len(list)), nil
}

func (r *alertRepo) Save(a *model.SearchAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.UpdatedAt = r.s.tick()
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r *alertRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[id]; !ok {
		return notFound("Alert not found")
	}
	delete(r.s.alerts, id)
	return nil
}

// ==================== AuditLog ====================

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(l *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&l.Base)
	r.s.audits = append(r.s.audits, *l)
	return nil
}

func (r *auditRepo) List(f model.AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditLog
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		l := r.s.audits[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.AdminID != "" && l.AdminID != f.AdminID {
			continue
		}
		out = append(out, l)
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// applyProfileColumn 值的类型与 profile service 构造的更新 map 一致
func applyProfileColumn(p *model.Profile, col string, v any) {
	switch col {
	case "type":
		p.Type = v.(model.ProfileType)
	case "gender":
		p.Gender = v.(model.Gender)
	case "first_name":
		p.FirstName = v.(string)
	case "last_name":
		p.LastName = v.(string)
	case "birth_place":
		p.BirthPlace = v.(string)
	case "maternity_hospital":
		p.MaternityHospital = v.(string)
	case "last_known_location":
		p.LastKnownLocation = v.(string)
	case "region":
		p.Region = v.(string)
	case "story":
		p.Story = v.(string)
	case "biological_mother_info":
		p.BiologicalMotherInfo = v.(string)
	case "biological_father_info":
		p.BiologicalFatherInfo = v.(string)
	case "medical_history":
		p.MedicalHistory = v.(string)
	case "birth_date":
		p.BirthDate = v.(*time.Time)
	case "birth_date_approximate":
		p.BirthDateApproximate = v.(bool)
	case "is_active":
		p.IsActive = v.(bool)
	case "birth_year":
		p.BirthYear = v.(*int)
	case "birth_month":
		p.BirthMonth = v.(*int)
	case "birth_day":
		p.BirthDay = v.(*int)
	case "my_birth_year":
		p.MyBirthYear = v.(*int)
	case "my_birth_month":
		p.MyBirthMonth = v.(*int)
	case "my_birth_day":
		p.MyBirthDay = v.(*int)
	}
}
