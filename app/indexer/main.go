// The indexer builds the JSON search index consumed by the site's
// client search. It runs as part of the site build.
package main

import (
	"log"

	"github.com/tomwolanski/site_search/builder"
	"github.com/tomwolanski/site_search/indexfile"
	"github.com/tomwolanski/site_search/utils"
)

func main() {
	config := utils.NewConfig()

	entries, err := builder.Build(config.ContentRoot(), config.Extensions)
	if err != nil {
		log.Fatal("failed to build index: ", err)
	}

	if err := indexfile.Write(config.IndexFile(), entries); err != nil {
		log.Fatal("failed to write index: ", err)
	}

	log.Printf("indexed %d articles into %s", len(entries), config.IndexFile())
}
