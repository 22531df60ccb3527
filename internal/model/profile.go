package model

import "time"

// ProfileType 寻亲类型
type ProfileType string

const (
	ProfileSearchingSibling  ProfileType = "searching_sibling"
	ProfileSearchingChild    ProfileType = "searching_child"
	ProfileSearchingParent   ProfileType = "searching_parent"
	ProfileSearchingRelative ProfileType = "searching_relative"
)

// Gender 被寻找人的性别
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Profile 寻亲档案
// 出生信息描述的是被寻找的人，My* 字段是发布者自己的出生信息
type Profile struct {
	Base
	UserID string      `gorm:"column:user_id;type:char(36);not null;index;comment:发布者id" json:"userId"`
	Type   ProfileType `gorm:"column:type;type:varchar(30);not null;index;comment:寻亲类型" json:"type"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null;comment:名" json:"firstName"`
	LastName  string `gorm:"column:last_name;type:varchar(100);comment:姓" json:"lastName"`

	BirthDate            *time.Time `gorm:"column:birth_date;comment:出生日期" json:"birthDate"`
	BirthDateApproximate bool       `gorm:"column:birth_date_approximate;not null;default:false" json:"birthDateApproximate"`
	BirthYear            *int       `gorm:"column:birth_year;index" json:"birthYear"`
	BirthMonth           *int       `gorm:"column:birth_month" json:"birthMonth"`
	BirthDay             *int       `gorm:"column:birth_day" json:"birthDay"`
	BirthPlace           string     `gorm:"column:birth_place;type:varchar(255)" json:"birthPlace"`
	MaternityHospital    string     `gorm:"column:maternity_hospital;type:varchar(255);index" json:"maternityHospital"`
	LastKnownLocation    string     `gorm:"column:last_known_location;type:varchar(255)" json:"lastKnownLocation"`
	Region               string     `gorm:"column:region;type:varchar(100);index" json:"region"`
	Gender               Gender     `gorm:"column:gender;type:varchar(10);not null;default:unknown" json:"gender"`

	Story                string `gorm:"column:story;type:text" json:"story"`
	BiologicalMotherInfo string `gorm:"column:biological_mother_info;type:text" json:"biologicalMotherInfo"`
	BiologicalFatherInfo string `gorm:"column:biological_father_info;type:text" json:"biologicalFatherInfo"`
	MedicalHistory       string `gorm:"column:medical_history;type:text" json:"medicalHistory"`

	MyBirthYear  *int `gorm:"column:my_birth_year" json:"myBirthYear"`
	MyBirthMonth *int `gorm:"column:my_birth_month" json:"myBirthMonth"`
	MyBirthDay   *int `gorm:"column:my_birth_day" json:"myBirthDay"`

	IsActive bool `gorm:"column:is_active;not null;default:true;index" json:"isActive"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Photos []Photo `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"photos"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Valid 是否为已知的寻亲类型
func (t ProfileType) Valid() bool {
	switch t {
	case ProfileSearchingSibling, ProfileSearchingChild, ProfileSearchingParent, ProfileSearchingRelative:
		return true
	}
	return false
}

// Valid 是否为已知性别
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnknown
}
