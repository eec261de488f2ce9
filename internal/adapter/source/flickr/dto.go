package flickr

// APIResponse is the top-level envelope of a flickr REST call (format=json, nojsoncallback=1)
type APIResponse struct {
	Photos  *PhotoPage `json:"photos,omitempty"`
	Stat    string     `json:"stat"`    // "ok" or "fail"
	Code    int        `json:"code"`    // Set when stat == "fail"
	Message string     `json:"message"` // Set when stat == "fail"
}

// PhotoPage is one page of photo results
type PhotoPage struct {
	Page    int     `json:"page"`
	Pages   int     `json:"pages"`
	PerPage int     `json:"perpage"`
	Photos  []Photo `json:"photo"`
}

// Photo is a single photo record; url_s is only present with extras=url_s
type Photo struct {
	ID     string `json:"id"`
	Owner  string `json:"owner"`
	Title  string `json:"title"`
	URLS   string `json:"url_s,omitempty"`
	Width  int    `json:"width_s,omitempty"`
	Height int    `json:"height_s,omitempty"`
}
