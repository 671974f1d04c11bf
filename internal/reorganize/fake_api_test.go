package reorganize_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

const (
	testOwnerIdentifierConstant = "42"
	testSessionDataConstant     = "session-data"
	testCSRFTokenConstant       = "csrf-token"
	testMusicFolderIDConstant   = 11
)

type fakeFavoritesAPI struct {
	mutex          sync.Mutex
	server         *httptest.Server
	createdTitles  []string
	movedResources []string
	nextFolderID   int64
}

func newFakeFavoritesAPI(testInstance *testing.T) *fakeFavoritesAPI {
	testInstance.Helper()
	api := &fakeFavoritesAPI{nextFolderID: 900}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	testInstance.Cleanup(api.server.Close)
	return api
}

func (api *fakeFavoritesAPI) environment() []string {
	return []string{
		"FAVSORT_SESSDATA=" + testSessionDataConstant,
		"FAVSORT_BILI_JCT=" + testCSRFTokenConstant,
		"FAVSORT_DEDEUSERID=" + testOwnerIdentifierConstant,
	}
}

func (api *fakeFavoritesAPI) handle(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")

	switch request.URL.Path {
	case "/x/v3/fav/folder/created/list-all":
		_, _ = io.WriteString(writer, `{"code":0,"data":{"list":[{"id":11,"title":"Music","media_count":3},{"id":12,"title":"Games","media_count":0}]}}`)
	case "/x/v3/fav/resource/list":
		_, _ = io.WriteString(writer, `{"code":0,"data":{"info":{"media_count":3},"has_more":false,"medias":[
			{"id":1,"type":2,"title":"Song A","fav_time":300,"upper":{"mid":7,"name":"Alice"}},
			{"id":2,"type":2,"title":"Song B","fav_time":200,"upper":{"mid":8,"name":"Bob"}},
			{"id":3,"type":2,"title":"Song C","fav_time":100,"upper":{"mid":7,"name":"Alice"}}
		]}}`)
	case "/x/v3/fav/folder/add":
		form := api.readForm(request)
		api.mutex.Lock()
		api.nextFolderID++
		folderIdentifier := api.nextFolderID
		api.createdTitles = append(api.createdTitles, form.Get("title"))
		api.mutex.Unlock()
		_, _ = io.WriteString(writer, fmt.Sprintf(`{"code":0,"data":{"id":%d}}`, folderIdentifier))
	case "/x/v3/fav/resource/move":
		form := api.readForm(request)
		api.mutex.Lock()
		api.movedResources = append(api.movedResources, form.Get("resources")+"->"+form.Get("tar_media_id"))
		api.mutex.Unlock()
		_, _ = io.WriteString(writer, `{"code":0,"message":"0"}`)
	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}

func (api *fakeFavoritesAPI) readForm(request *http.Request) url.Values {
	body, _ := io.ReadAll(request.Body)
	form, _ := url.ParseQuery(string(body))
	return form
}

func (api *fakeFavoritesAPI) snapshot() ([]string, []string) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	return append([]string{}, api.createdTitles...), append([]string{}, api.movedResources...)
}
