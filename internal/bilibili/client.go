package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/credentials"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/favorites"
)

const (
	// DefaultBaseURL is the web API origin.
	DefaultBaseURL = "https://api.bilibili.com"
	// DefaultRequestTimeout bounds a single HTTP exchange.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultUserAgent identifies the client to the remote.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	listOwnedFoldersPathConstant          = "/x/v3/fav/folder/created/list-all"
	listResourcesPathConstant             = "/x/v3/fav/resource/list"
	createFolderPathConstant              = "/x/v3/fav/folder/add"
	moveResourcePathConstant              = "/x/v3/fav/resource/move"
	refererHeaderValueConstant            = "https://www.bilibili.com/"
	acceptHeaderValueConstant             = "application/json, text/plain, */*"
	formContentTypeConstant               = "application/x-www-form-urlencoded; charset=UTF-8"
	acceptHeaderNameConstant              = "Accept"
	cookieHeaderNameConstant              = "Cookie"
	refererHeaderNameConstant             = "Referer"
	userAgentHeaderNameConstant           = "User-Agent"
	contentTypeHeaderNameConstant         = "Content-Type"
	ownerMidParameterConstant             = "up_mid"
	typeParameterConstant                 = "type"
	ridParameterConstant                  = "rid"
	mediaIDParameterConstant              = "media_id"
	pageNumberParameterConstant           = "pn"
	pageSizeParameterConstant             = "ps"
	keywordParameterConstant              = "keyword"
	orderParameterConstant                = "order"
	tidParameterConstant                  = "tid"
	platformParameterConstant             = "platform"
	titleParameterConstant                = "title"
	introParameterConstant                = "intro"
	privacyParameterConstant              = "privacy"
	coverParameterConstant                = "cover"
	csrfParameterConstant                 = "csrf"
	sourceMediaIDParameterConstant        = "src_media_id"
	targetMediaIDParameterConstant        = "tar_media_id"
	resourcesParameterConstant            = "resources"
	videoFolderTypeValueConstant          = "2"
	zeroValueConstant                     = "0"
	mtimeOrderValueConstant               = "mtime"
	webPlatformValueConstant              = "web"
	publicPrivacyValueConstant            = "0"
	privatePrivacyValueConstant           = "1"
	ownerIdentifierFieldNameConstant      = "owner_identifier"
	folderIdentifierFieldNameConstant     = "folder_identifier"
	folderTitleFieldNameConstant          = "title"
	pageIndexFieldNameConstant            = "page_index"
	itemIdentifierFieldNameConstant       = "item_identifier"
	requiredValueMessageConstant          = "value required"
	positiveValueMessageConstant          = "must be positive"
	invalidBaseURLTemplateConstant        = "invalid base url %q: %w"
	responseBodyReadErrorTemplateConstant = "unable to read response body: %w"
)

// HTTPDoer is the minimal interface required from *http.Client.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Config describes how the client reaches the remote.
type Config struct {
	BaseURL        string
	HTTPClient     HTTPDoer
	Session        credentials.Session
	UserAgent      string
	RequestTimeout time.Duration
}

// FolderCreationOptions describes a folder to create.
type FolderCreationOptions struct {
	Title   string
	Intro   string
	Private bool
}

// MoveRequest describes a single resource move between two folders.
type MoveRequest struct {
	SourceCollectionID      int64
	DestinationCollectionID int64
	Item                    favorites.Item
}

// Client performs favorite folder operations over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient HTTPDoer
	session    credentials.Session
	userAgent  string
}

// NewClient constructs a Client.
func NewClient(config Config) (*Client, error) {
	if validationError := config.Session.Validate(); validationError != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionMissing, validationError)
	}

	baseURLValue := strings.TrimSpace(config.BaseURL)
	if len(baseURLValue) == 0 {
		baseURLValue = DefaultBaseURL
	}
	parsedBaseURL, parseError := url.Parse(strings.TrimRight(baseURLValue, "/"))
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLTemplateConstant, baseURLValue, parseError)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(config.UserAgent)
	if len(userAgent) == 0 {
		userAgent = DefaultUserAgent
	}

	return &Client{baseURL: parsedBaseURL, httpClient: httpClient, session: config.Session, userAgent: userAgent}, nil
}

// ListOwnedFolders returns every folder created by the owner.
func (client *Client) ListOwnedFolders(executionContext context.Context, ownerIdentifier string) ([]favorites.SourceCollection, error) {
	trimmedOwner := strings.TrimSpace(ownerIdentifier)
	if len(trimmedOwner) == 0 {
		return nil, InvalidInputError{FieldName: ownerIdentifierFieldNameConstant, Message: requiredValueMessageConstant}
	}

	query := url.Values{}
	query.Set(ownerMidParameterConstant, trimmedOwner)
	query.Set(typeParameterConstant, videoFolderTypeValueConstant)
	query.Set(ridParameterConstant, zeroValueConstant)

	var payload struct {
		List []struct {
			Identifier int64  `json:"id"`
			Title      string `json:"title"`
			MediaCount int    `json:"media_count"`
		} `json:"list"`
	}
	if requestError := client.getJSON(executionContext, ListOwnedFoldersOperationName, listOwnedFoldersPathConstant, query, &payload); requestError != nil {
		return nil, requestError
	}

	folders := make([]favorites.SourceCollection, 0, len(payload.List))
	for _, folder := range payload.List {
		folders = append(folders, favorites.SourceCollection{Identifier: folder.Identifier, Title: folder.Title, MediaCount: folder.MediaCount})
	}
	return folders, nil
}

// FetchPage reads one page of a folder ordered by save time.
func (client *Client) FetchPage(executionContext context.Context, collection favorites.SourceCollection, pageIndex int, pageSize int) (favorites.ItemPage, error) {
	if collection.Identifier <= 0 {
		return favorites.ItemPage{}, InvalidInputError{FieldName: folderIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if pageIndex < 1 {
		return favorites.ItemPage{}, InvalidInputError{FieldName: pageIndexFieldNameConstant, Message: positiveValueMessageConstant}
	}

	query := url.Values{}
	query.Set(mediaIDParameterConstant, strconv.FormatInt(collection.Identifier, 10))
	query.Set(pageNumberParameterConstant, strconv.Itoa(pageIndex))
	query.Set(pageSizeParameterConstant, strconv.Itoa(pageSize))
	query.Set(keywordParameterConstant, "")
	query.Set(orderParameterConstant, mtimeOrderValueConstant)
	query.Set(typeParameterConstant, zeroValueConstant)
	query.Set(tidParameterConstant, zeroValueConstant)
	query.Set(platformParameterConstant, webPlatformValueConstant)

	var payload struct {
		Info *struct {
			MediaCount int `json:"media_count"`
		} `json:"info"`
		Medias []struct {
			Identifier   int64  `json:"id"`
			ResourceType int    `json:"type"`
			Title        string `json:"title"`
			SavedTime    int64  `json:"fav_time"`
			Upper        struct {
				Identifier json.Number `json:"mid"`
				Name       string      `json:"name"`
			} `json:"upper"`
		} `json:"medias"`
		HasMore bool `json:"has_more"`
	}
	if requestError := client.getJSON(executionContext, FetchPageOperationName, listResourcesPathConstant, query, &payload); requestError != nil {
		return favorites.ItemPage{}, requestError
	}

	page := favorites.ItemPage{HasMore: payload.HasMore, Items: make([]favorites.Item, 0, len(payload.Medias))}
	if payload.Info != nil {
		page.DeclaredTotal = payload.Info.MediaCount
		page.DeclaredTotalKnown = true
	}
	for _, media := range payload.Medias {
		creatorIdentifier := media.Upper.Identifier.String()
		if creatorIdentifier == zeroValueConstant {
			creatorIdentifier = ""
		}
		item := favorites.Item{
			Identifier:        media.Identifier,
			ResourceType:      media.ResourceType,
			Title:             media.Title,
			CreatorIdentifier: creatorIdentifier,
			CreatorName:       media.Upper.Name,
			SavedTimestamp:    media.SavedTime,
		}
		page.Items = append(page.Items, item.Normalize())
	}
	return page, nil
}

// CreateFolder creates a new folder and returns its identifier.
func (client *Client) CreateFolder(executionContext context.Context, options FolderCreationOptions) (int64, error) {
	trimmedTitle := strings.TrimSpace(options.Title)
	if len(trimmedTitle) == 0 {
		return 0, InvalidInputError{FieldName: folderTitleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	privacy := publicPrivacyValueConstant
	if options.Private {
		privacy = privatePrivacyValueConstant
	}

	form := url.Values{}
	form.Set(titleParameterConstant, trimmedTitle)
	form.Set(introParameterConstant, options.Intro)
	form.Set(privacyParameterConstant, privacy)
	form.Set(coverParameterConstant, "")
	form.Set(csrfParameterConstant, client.session.CSRFToken)

	var payload struct {
		Identifier int64 `json:"id"`
	}
	if requestError := client.postForm(executionContext, CreateFolderOperationName, createFolderPathConstant, form, &payload); requestError != nil {
		return 0, requestError
	}
	if payload.Identifier == 0 {
		return 0, OperationError{Operation: CreateFolderOperationName, Cause: ErrMissingFolderIdentifier}
	}
	return payload.Identifier, nil
}

// MoveResource moves one item from its source folder into the destination folder.
func (client *Client) MoveResource(executionContext context.Context, request MoveRequest) error {
	if request.SourceCollectionID <= 0 || request.DestinationCollectionID <= 0 {
		return InvalidInputError{FieldName: folderIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if request.Item.Identifier <= 0 {
		return InvalidInputError{FieldName: itemIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}

	form := url.Values{}
	form.Set(sourceMediaIDParameterConstant, strconv.FormatInt(request.SourceCollectionID, 10))
	form.Set(targetMediaIDParameterConstant, strconv.FormatInt(request.DestinationCollectionID, 10))
	form.Set(resourcesParameterConstant, request.Item.ResourceReference())
	form.Set(platformParameterConstant, webPlatformValueConstant)
	form.Set(csrfParameterConstant, client.session.CSRFToken)

	return client.postForm(executionContext, MoveResourceOperationName, moveResourcePathConstant, form, nil)
}

func (client *Client) getJSON(executionContext context.Context, operation OperationName, path string, query url.Values, target any) error {
	endpoint := client.endpoint(path)
	endpoint.RawQuery = query.Encode()

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, endpoint.String(), nil)
	if requestError != nil {
		return OperationError{Operation: operation, Cause: requestError}
	}
	return client.execute(operation, request, target)
}

func (client *Client) postForm(executionContext context.Context, operation OperationName, path string, form url.Values, target any) error {
	endpoint := client.endpoint(path)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if requestError != nil {
		return OperationError{Operation: operation, Cause: requestError}
	}
	request.Header.Set(contentTypeHeaderNameConstant, formContentTypeConstant)
	return client.execute(operation, request, target)
}

func (client *Client) endpoint(path string) *url.URL {
	endpoint := *client.baseURL
	endpoint.Path = client.baseURL.Path + path
	return &endpoint
}

type responseEnvelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func (client *Client) execute(operation OperationName, request *http.Request, target any) error {
	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	request.Header.Set(cookieHeaderNameConstant, client.session.CookieHeader())
	request.Header.Set(refererHeaderNameConstant, refererHeaderValueConstant)
	request.Header.Set(userAgentHeaderNameConstant, client.userAgent)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return OperationError{Operation: operation, Cause: responseError}
	}
	defer response.Body.Close()

	body, readError := io.ReadAll(response.Body)
	if readError != nil {
		return OperationError{Operation: operation, Cause: fmt.Errorf(responseBodyReadErrorTemplateConstant, readError)}
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return OperationError{Operation: operation, Cause: HTTPStatusError{StatusCode: response.StatusCode, Status: http.StatusText(response.StatusCode)}}
	}

	var envelope responseEnvelope
	if decodeError := json.Unmarshal(body, &envelope); decodeError != nil {
		return OperationError{Operation: operation, Cause: ResponseDecodingError{Operation: operation, Cause: decodeError}}
	}
	if envelope.Code == nil {
		return OperationError{Operation: operation, Cause: ErrMissingResponseCode}
	}
	if *envelope.Code != 0 {
		message := envelope.Message
		if len(message) == 0 {
			message = envelope.Msg
		}
		return OperationError{Operation: operation, Cause: APIError{Code: *envelope.Code, Message: message}}
	}

	if target == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if decodeError := json.Unmarshal(envelope.Data, target); decodeError != nil {
		return OperationError{Operation: operation, Cause: ResponseDecodingError{Operation: operation, Cause: decodeError}}
	}
	return nil
}
