// Package manifest reads a game's launch manifest and turns it into the
// request sent to the launcher daemon.
//
// A manifest is a small XML document:
//
//	<hawa-game arch="arm64">
//	  <game-id package="org.example" app="Game"/>
//	  <command>bin/game.sh</command>
//	  <saves>
//	    <include pattern="saves/**"><exclude pattern="saves/cache"/></include>
//	  </saves>
//	</hawa-game>
//
// Only the root, <game-id> and <command> are required. Missing attributes and
// empty text resolve to empty strings. The launch directory is never read from
// the document; it is the directory containing the manifest file.
package manifest
