package tests

import (
	"net/http"
	"testing"

	. "github.com/lilypad-dao/lilypad/apps/api/echo"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/tests"
)

func Test_contentApi(t *testing.T) {
	f := setup(t)

	intro := testutil.CreateItem(t, f.db, content.TypeCourse, "Intro to DAOs", "dao", "defi", "tech:solidity")
	gov := testutil.CreateItem(t, f.db, content.TypeCourse, "Governance", "dao", "tech:snapshot")
	lending := testutil.CreateItem(t, f.db, content.TypeCourse, "Lending", "dao", "defi", "tech:solidity")
	handbook := testutil.CreateItem(t, f.db, content.TypeResource, "DAO handbook", "dao")
	pixel := testutil.CreateItem(t, f.db, content.TypeCourse, "Pixel art", "nft")
	dashboard := testutil.CreateItem(t, f.db, content.TypeProject, "Treasury dashboard", "defi", "tech:solidity")

	tests := []httpTest{
		{
			name:     "list courses",
			method:   http.MethodGet,
			path:     "/v1/courses",
			wantCode: http.StatusOK,
			wantData: marchallList(t, intro, gov, lending, pixel),
		},
		{
			name:     "browse courses by tag",
			method:   http.MethodGet,
			path:     "/v1/courses?tag=defi",
			wantCode: http.StatusOK,
			wantData: marchallList(t, intro, lending),
		},
		{
			name:     "browse courses by tech, ordered",
			method:   http.MethodGet,
			path:     "/v1/courses?tech=solidity&ordering=-title",
			wantCode: http.StatusOK,
			wantData: marchallList(t, lending, intro),
		},
		{
			name:     "unknown ordering field is ignored",
			method:   http.MethodGet,
			path:     "/v1/courses?tag=defi&ordering=password",
			wantCode: http.StatusOK,
			wantData: marchallList(t, intro, lending),
		},
		{
			name:     "paginate",
			method:   http.MethodGet,
			path:     "/v1/courses?take=1&skip=1",
			wantCode: http.StatusOK,
			wantData: marchallList(t, gov),
		},
		{
			name:     "invalid slug",
			method:   http.MethodGet,
			path:     "/v1/courses?tag=not%20a%20slug",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no resources match",
			method:   http.MethodGet,
			path:     "/v1/resources?tag=nft",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "retrieve course",
			method:   http.MethodGet,
			path:     "/v1/courses/1",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, intro),
		},
		{
			name:     "retrieve course with wrong type",
			method:   http.MethodGet,
			path:     "/v1/projects/1",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "retrieve invalid id",
			method:   http.MethodGet,
			path:     "/v1/courses/abc",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "related courses",
			method:   http.MethodGet,
			path:     "/v1/courses/1/related",
			wantCode: http.StatusOK,
			wantData: marchallList(t, lending, gov),
		},
		{
			name:     "related courses, none",
			method:   http.MethodGet,
			path:     "/v1/courses/5/related",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "related resources of a course",
			method:   http.MethodGet,
			path:     "/v1/courses/1/related-resources",
			wantCode: http.StatusOK,
			wantData: marchallList(t, handbook),
		},
		{
			name:     "related resources of an unknown course",
			method:   http.MethodGet,
			path:     "/v1/courses/99/related-resources",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "generic related lookup",
			method:   http.MethodGet,
			path:     "/v1/related?type=project&tag=defi&tech=solidity",
			wantCode: http.StatusOK,
			wantData: marchallList(t, dashboard),
		},
		{
			name:     "generic related lookup with exclusion and take",
			method:   http.MethodGet,
			path:     "/v1/related?type=COURSE&tag=dao&exclude=1&take=1",
			wantCode: http.StatusOK,
			wantData: marchallList(t, gov),
		},
		{
			name:     "generic related lookup, no slugs",
			method:   http.MethodGet,
			path:     "/v1/related?type=COURSE",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "generic related lookup, non-positive take",
			method:   http.MethodGet,
			path:     "/v1/related?type=COURSE&tag=dao&take=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "generic related lookup, missing type",
			method:   http.MethodGet,
			path:     "/v1/related?tag=dao",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "this field is required"}),
		},
	}
	runHTTPTests(t, f.app, tests)
}

func Test_taxonomyApi(t *testing.T) {
	f := setup(t)

	testutil.CreateItem(t, f.db, content.TypeCourse, "Intro to DAOs", "dao", "defi", "tech:solidity")
	testutil.CreateItem(t, f.db, content.TypeCourse, "Governance", "dao", "tech:snapshot")
	testutil.CreateItem(t, f.db, content.TypeResource, "DAO handbook", "dao")

	dao := content.Tag{ID: 1, Name: "dao", Slug: "dao"}
	defi := content.Tag{ID: 2, Name: "defi", Slug: "defi", Count: 1}
	solidity := content.Technology{ID: 1, Name: "solidity", Slug: "solidity", Count: 1}
	snapshot := content.Technology{ID: 2, Name: "snapshot", Slug: "snapshot", Count: 1}

	courseDao, allDao := dao, dao
	courseDao.Count = 2
	allDao.Count = 3

	tests := []httpTest{
		{
			name:     "course tags",
			method:   http.MethodGet,
			path:     "/v1/tags?type=course",
			wantCode: http.StatusOK,
			wantData: marchallList(t, courseDao, defi),
		},
		{
			name:     "all tags",
			method:   http.MethodGet,
			path:     "/v1/tags",
			wantCode: http.StatusOK,
			wantData: marchallList(t, allDao, defi),
		},
		{
			name:     "unknown type",
			method:   http.MethodGet,
			path:     "/v1/tags?type=blog",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "resource technologies",
			method:   http.MethodGet,
			path:     "/v1/technologies?type=RESOURCE",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "course technologies",
			method:   http.MethodGet,
			path:     "/v1/technologies?type=COURSE",
			wantCode: http.StatusOK,
			wantData: marchallList(t, solidity, snapshot),
		},
		{
			name:     "levels",
			method:   http.MethodGet,
			path:     "/v1/levels",
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				content.Level{ID: 1, Name: "Beginner", Slug: "beginner"},
				content.Level{ID: 2, Name: "Intermediate", Slug: "intermediate"},
				content.Level{ID: 3, Name: "Advanced", Slug: "advanced"},
			),
		},
		{
			name:     "course filters",
			method:   http.MethodGet,
			path:     "/v1/filters?type=COURSE&top=3",
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				FilterResponse{Filter: content.FilterFromTag(courseDao), Segment: "tag"},
				FilterResponse{Filter: content.FilterFromTag(defi), Segment: "tag"},
				FilterResponse{Filter: content.FilterFromTechnology(solidity), Segment: "tech"},
			),
		},
		{
			name:     "filters default to the homepage size",
			method:   http.MethodGet,
			path:     "/v1/filters",
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				FilterResponse{Filter: content.FilterFromTag(allDao), Segment: "tag"},
				FilterResponse{Filter: content.FilterFromTag(defi), Segment: "tag"},
				FilterResponse{Filter: content.FilterFromTechnology(solidity), Segment: "tech"},
				FilterResponse{Filter: content.FilterFromTechnology(snapshot), Segment: "tech"},
			),
		},
		{
			name:     "non-positive top",
			method:   http.MethodGet,
			path:     "/v1/filters?top=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-integer top",
			method:   http.MethodGet,
			path:     "/v1/filters?top=ten",
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, f.app, tests)
}

func Test_treasuryApi(t *testing.T) {
	f := setup(t)
	runHTTPTests(t, f.app, []httpTest{
		{
			name:     "value",
			method:   http.MethodGet,
			path:     "/v1/treasury",
			wantCode: http.StatusOK,
			wantData: []byte(`{"wei":"1500000000000000000","formatted":"1.5"}`),
		},
		{
			name:     "home",
			method:   http.MethodGet,
			path:     "/",
			wantCode: http.StatusOK,
			wantData: []byte(`{"name":"The Lily Pad","build":"test"}`),
		},
		{
			name:     "metrics",
			method:   http.MethodGet,
			path:     "/metrics",
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown route",
			method:   http.MethodGet,
			path:     "/v1/blogs",
			wantCode: http.StatusNotFound,
		},
	})
}
