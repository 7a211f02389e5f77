package sources

// The YouTube collaborator is split across four files by responsibility:
//   youtube_innertube.go: WEB client context, session and the POST primitive
//   youtube_client.go   : upstream.Client operations and error mapping
//   youtube_listing.go  : row and continuation extraction from listings
//   youtube_page.go     : ytInitialData scraping from HTML channel pages
