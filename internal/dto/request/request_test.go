package request

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

func TestOptionalDistinguishesNullFromMissing(t *testing.T) {
	var req UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(`{"region":null,"story":"found","birthYear":1987}`), &req))

	assert.True(t, req.Region.Set)
	assert.Nil(t, req.Region.Value)
	assert.True(t, req.Story.Set)
	assert.Equal(t, "found", *req.Story.Value)
	assert.False(t, req.LastName.Set)
	require.NotNil(t, req.BirthYear.Value)
	assert.Equal(t, 1987, *req.BirthYear.Value)
}

func TestFields(t *testing.T) {
	var req UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "searching_parent",
		"firstName": "",
		"region": null,
		"birthDate": "1987-05-02",
		"birthMonth": null,
		"isActive": false
	}`), &req))

	fields, err := req.Fields()
	require.NoError(t, err)
	assert.Equal(t, model.ProfileSearchingParent, fields["type"])
	assert.NotContains(t, fields, "first_name")
	assert.Equal(t, "", fields["region"])
	assert.Equal(t, false, fields["is_active"])
	assert.Nil(t, fields["birth_month"].(*int))
	date := fields["birth_date"].(*time.Time)
	require.NotNil(t, date)
	assert.Equal(t, time.May, date.Month())
	assert.NotContains(t, fields, "story")
}

func TestFieldsValidation(t *testing.T) {
	cases := []UpdateProfileRequest{
		{Type: Some("searching_cat")},
		{FirstName: Some("A")},
		{Gender: Some("other")},
		{BirthMonth: Some(13)},
		{BirthYear: Some(1800)},
		{BirthDate: Some("yesterday")},
	}
	for _, c := range cases {
		_, err := c.Fields()
		assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2001-09-30")
	require.NoError(t, err)
	assert.Equal(t, 2001, d.Year())

	d, err = ParseDate("2001-09-30T23:00:00+04:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 19, d.Hour())

	_, err = ParseDate("30.09.2001")
	assert.Error(t, err)
}

func TestPageQueryNormalize(t *testing.T) {
	q := PageQuery{}
	assert.Equal(t, 0, q.Normalize(20))
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)

	q = PageQuery{Page: 3, Limit: 10}
	assert.Equal(t, 20, q.Normalize(20))
}
