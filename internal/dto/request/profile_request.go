package request

import (
	"time"

	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

// 出生年份允许的范围
const (
	MinBirthYear = 1900
	MaxBirthYear = 2100
)

// ProfileQuery 公开档案搜索参数
// 使用位置:
//   - internal/handler/profile_handler.go: List
type ProfileQuery struct {
	Page              int    `form:"page" binding:"omitempty,min=1"`
	Limit             int    `form:"limit" binding:"omitempty,min=1,max=50"`
	Type              string `form:"type" binding:"omitempty,oneof=searching_sibling searching_child searching_parent searching_relative"`
	Region            string `form:"region" binding:"max=100"`
	Gender            string `form:"gender" binding:"omitempty,oneof=male female unknown"`
	BirthYearFrom     *int   `form:"birthYearFrom" binding:"omitempty,min=1900,max=2100"`
	BirthYearTo       *int   `form:"birthYearTo" binding:"omitempty,min=1900,max=2100"`
	BirthMonth        *int   `form:"birthMonth" binding:"omitempty,min=1,max=12"`
	BirthDay          *int   `form:"birthDay" binding:"omitempty,min=1,max=31"`
	MaternityHospital string `form:"maternityHospital" binding:"max=255"`
	Search            string `form:"search" binding:"max=100"`
}

// Filter 转换为仓储层查询条件
func (q ProfileQuery) Filter() model.ProfileFilter {
	return model.ProfileFilter{
		Type:              model.ProfileType(q.Type),
		Region:            q.Region,
		Gender:            model.Gender(q.Gender),
		BirthYearFrom:     q.BirthYearFrom,
		BirthYearTo:       q.BirthYearTo,
		BirthMonth:        q.BirthMonth,
		BirthDay:          q.BirthDay,
		MaternityHospital: q.MaternityHospital,
		Search:            q.Search,
	}
}

// CreateProfileRequest 创建档案请求
type CreateProfileRequest struct {
	Type                 string  `json:"type" binding:"required,oneof=searching_sibling searching_child searching_parent searching_relative"`
	FirstName            string  `json:"firstName" binding:"required,min=2,max=100"`
	LastName             string  `json:"lastName" binding:"max=100"`
	BirthDate            *string `json:"birthDate"`
	BirthDateApproximate bool    `json:"birthDateApproximate"`
	BirthYear            *int    `json:"birthYear" binding:"omitempty,min=1900,max=2100"`
	BirthMonth           *int    `json:"birthMonth" binding:"omitempty,min=1,max=12"`
	BirthDay             *int    `json:"birthDay" binding:"omitempty,min=1,max=31"`
	BirthPlace           string  `json:"birthPlace" binding:"max=255"`
	MaternityHospital    string  `json:"maternityHospital" binding:"max=255"`
	LastKnownLocation    string  `json:"lastKnownLocation" binding:"max=255"`
	Region               string  `json:"region" binding:"max=100"`
	Gender               string  `json:"gender" binding:"omitempty,oneof=male female unknown"`
	Story                string  `json:"story" binding:"max=10000"`
	BiologicalMotherInfo string  `json:"biologicalMotherInfo" binding:"max=5000"`
	BiologicalFatherInfo string  `json:"biologicalFatherInfo" binding:"max=5000"`
	MedicalHistory       string  `json:"medicalHistory" binding:"max=5000"`
	MyBirthYear          *int    `json:"myBirthYear" binding:"omitempty,min=1900,max=2100"`
	MyBirthMonth         *int    `json:"myBirthMonth" binding:"omitempty,min=1,max=12"`
	MyBirthDay           *int    `json:"myBirthDay" binding:"omitempty,min=1,max=31"`
}

// UpdateProfileRequest 部分更新，只修改请求体中出现的字段
// 管理后台编辑档案复用此结构
type UpdateProfileRequest struct {
	Type                 Optional[string] `json:"type"`
	FirstName            Optional[string] `json:"firstName"`
	LastName             Optional[string] `json:"lastName"`
	BirthDate            Optional[string] `json:"birthDate"`
	BirthDateApproximate Optional[bool]   `json:"birthDateApproximate"`
	BirthYear            Optional[int]    `json:"birthYear"`
	BirthMonth           Optional[int]    `json:"birthMonth"`
	BirthDay             Optional[int]    `json:"birthDay"`
	BirthPlace           Optional[string] `json:"birthPlace"`
	MaternityHospital    Optional[string] `json:"maternityHospital"`
	LastKnownLocation    Optional[string] `json:"lastKnownLocation"`
	Region               Optional[string] `json:"region"`
	Gender               Optional[string] `json:"gender"`
	Story                Optional[string] `json:"story"`
	BiologicalMotherInfo Optional[string] `json:"biologicalMotherInfo"`
	BiologicalFatherInfo Optional[string] `json:"biologicalFatherInfo"`
	MedicalHistory       Optional[string] `json:"medicalHistory"`
	MyBirthYear          Optional[int]    `json:"myBirthYear"`
	MyBirthMonth         Optional[int]    `json:"myBirthMonth"`
	MyBirthDay           Optional[int]    `json:"myBirthDay"`
	IsActive             Optional[bool]   `json:"isActive"`
}

// Fields 校验并转换为按列名更新的 map
// 字符串字段显式 null 时写入空串；类型、名、性别为空时忽略
func (r UpdateProfileRequest) Fields() (map[string]any, error) {
	fields := map[string]any{}

	if r.Type.Set && r.Type.Value != nil && *r.Type.Value != "" {
		t := model.ProfileType(*r.Type.Value)
		if !t.Valid() {
			return nil, errorx.New(errorx.CodeInvalidParam, "Invalid profile type")
		}
		fields["type"] = t
	}
	if r.FirstName.Set && r.FirstName.Value != nil && *r.FirstName.Value != "" {
		if n := len([]rune(*r.FirstName.Value)); n < 2 || n > 100 {
			return nil, errorx.New(errorx.CodeInvalidParam, "First name must be 2-100 characters")
		}
		fields["first_name"] = *r.FirstName.Value
	}
	if r.Gender.Set && r.Gender.Value != nil && *r.Gender.Value != "" {
		g := model.Gender(*r.Gender.Value)
		if !g.Valid() {
			return nil, errorx.New(errorx.CodeInvalidParam, "Invalid gender")
		}
		fields["gender"] = g
	}
	if r.BirthDate.Set {
		var date *time.Time
		if r.BirthDate.Value != nil && *r.BirthDate.Value != "" {
			d, err := ParseDate(*r.BirthDate.Value)
			if err != nil {
				return nil, err
			}
			date = d
		}
		fields["birth_date"] = date
	}

	texts := []struct {
		col string
		opt Optional[string]
		max int
	}{
		{"last_name", r.LastName, 100},
		{"birth_place", r.BirthPlace, 255},
		{"maternity_hospital", r.MaternityHospital, 255},
		{"last_known_location", r.LastKnownLocation, 255},
		{"region", r.Region, 100},
		{"story", r.Story, 10000},
		{"biological_mother_info", r.BiologicalMotherInfo, 5000},
		{"biological_father_info", r.BiologicalFatherInfo, 5000},
		{"medical_history", r.MedicalHistory, 5000},
	}
	for _, t := range texts {
		if !t.opt.Set {
			continue
		}
		v := ""
		if t.opt.Value != nil {
			v = *t.opt.Value
		}
		if len([]rune(v)) > t.max {
			return nil, errorx.Newf(errorx.CodeInvalidParam, "%s is too long", t.col)
		}
		fields[t.col] = v
	}

	ints := []struct {
		col      string
		opt      Optional[int]
		min, max int
	}{
		{"birth_year", r.BirthYear, MinBirthYear, MaxBirthYear},
		{"birth_month", r.BirthMonth, 1, 12},
		{"birth_day", r.BirthDay, 1, 31},
		{"my_birth_year", r.MyBirthYear, MinBirthYear, MaxBirthYear},
		{"my_birth_month", r.MyBirthMonth, 1, 12},
		{"my_birth_day", r.MyBirthDay, 1, 31},
	}
	for _, n := range ints {
		if !n.opt.Set {
			continue
		}
		if n.opt.Value != nil && (*n.opt.Value < n.min || *n.opt.Value > n.max) {
			return nil, errorx.Newf(errorx.CodeInvalidParam, "%s must be between %d and %d", n.col, n.min, n.max)
		}
		fields[n.col] = n.opt.Value
	}

	if r.BirthDateApproximate.Set && r.BirthDateApproximate.Value != nil {
		fields["birth_date_approximate"] = *r.BirthDateApproximate.Value
	}
	if r.IsActive.Set && r.IsActive.Value != nil {
		fields["is_active"] = *r.IsActive.Value
	}
	return fields, nil
}

// ParseDate 接受 2006-01-02 或 RFC3339
func ParseDate(s string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errorx.New(errorx.CodeInvalidParam, "Invalid birth date")
}
