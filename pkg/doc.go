// Package pkg provides the core libraries for archmap architecture analysis.
//
// # Overview
//
// archmap turns a source-code project into a visual architecture model: a
// hierarchy of folders, files and symbols with dependency edges, metrics
// and a deterministic treemap layout. The pkg directory contains reusable
// Go libraries organized into four main areas:
//
//  1. Input ([source] and its subpackages: folder reading, language-server
//     client, tree-sitter extraction)
//  2. Analysis ([model], [digraph], [analyze], [treemap], [pipeline])
//  3. Output ([snapshot], [render], [server])
//  4. Infrastructure ([cache], [errors], [observability], [buildinfo])
//
// # Typical Flow
//
//	location := source.ProjectLocation{FolderPath: path, CodeFileEndings: []string{"go"}}
//	ctrl, err := pipeline.NewController(pipeline.Options{
//	    Location: location,
//	    Provider: treesitter.New(),
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := ctrl.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	svg := rendertreemap.RenderSVG(result.Tree, rendertreemap.Options{})
//
// Here rendertreemap is pkg/render/treemap (the SVG writer), not the
// [treemap] layouter.
//
// [source]: github.com/matzehuels/archmap/pkg/source
// [model]: github.com/matzehuels/archmap/pkg/model
// [digraph]: github.com/matzehuels/archmap/pkg/digraph
// [analyze]: github.com/matzehuels/archmap/pkg/analyze
// [treemap]: github.com/matzehuels/archmap/pkg/treemap
// [pipeline]: github.com/matzehuels/archmap/pkg/pipeline
// [snapshot]: github.com/matzehuels/archmap/pkg/snapshot
// [render]: github.com/matzehuels/archmap/pkg/render
// [server]: github.com/matzehuels/archmap/pkg/server
// [cache]: github.com/matzehuels/archmap/pkg/cache
// [errors]: github.com/matzehuels/archmap/pkg/errors
// [observability]: github.com/matzehuels/archmap/pkg/observability
// [buildinfo]: github.com/matzehuels/archmap/pkg/buildinfo
package pkg
