package browser

// Registry entries look like {original, nodes, container}. nodes is what
// currently stands where the original element stood; an empty replacement
// leaves a comment placeholder so the position is never lost.

const resolveJS = `function (selector, token) {
	const reg = window.` + Registry + ` || (window.` + Registry + ` = {});
	let el;
	try {
		el = document.querySelector(selector);
	} catch (e) {
		return {found: false, error: "invalid selector: " + e.message};
	}
	if (!el) {
		return {found: false, error: ""};
	}
	reg[token] = {original: el, nodes: [el], container: el.parentElement || document.documentElement};
	return {found: true, error: ""};
}`

const markupJS = `function (token) {
	const entry = (window.` + Registry + ` || {})[token];
	if (!entry) throw new Error("unknown element handle " + token);
	return entry.nodes.map(function (n) {
		if (n.nodeType === Node.ELEMENT_NODE) return n.outerHTML;
		if (n.nodeType === Node.TEXT_NODE) return n.textContent;
		return "";
	}).join("");
}`

const swapJS = `function swap(entry, nodes) {
	const first = entry.nodes[0];
	const parent = first.parentNode;
	if (!parent) throw new Error("element is no longer attached to the document");
	const anchor = document.createComment("a11yfix");
	parent.insertBefore(anchor, first);
	entry.nodes.forEach(function (n) { if (n.parentNode) n.parentNode.removeChild(n); });
	if (nodes.length === 0) {
		entry.nodes = [anchor];
		return true;
	}
	nodes.forEach(function (n) { parent.insertBefore(n, anchor); });
	parent.removeChild(anchor);
	entry.nodes = nodes;
	return true;
}`

const replaceJS = `function (token, markup) {
	const entry = (window.` + Registry + ` || {})[token];
	if (!entry) throw new Error("unknown element handle " + token);
	const tpl = document.createElement("template");
	tpl.innerHTML = markup;
	const nodes = Array.prototype.slice.call(tpl.content.childNodes);
	return (` + swapJS + `)(entry, nodes);
}`

const restoreJS = `function (token) {
	const entry = (window.` + Registry + ` || {})[token];
	if (!entry) throw new Error("unknown element handle " + token);
	if (entry.nodes.length === 1 && entry.nodes[0] === entry.original) return true;
	return (` + swapJS + `)(entry, [entry.original]);
}`

const releaseJS = `function (token) {
	const reg = window.` + Registry + `;
	if (reg) delete reg[token];
	return true;
}`

// NodesExpr returns a JavaScript expression evaluating to the nodes that
// currently stand where the element behind token stood.
func NodesExpr(token string) (string, error) {
	return Call(`function (token) {
	const entry = (window.`+Registry+` || {})[token];
	if (!entry) throw new Error("unknown element handle " + token);
	return entry.nodes;
}`, token)
}

// ContainerExpr returns a JavaScript expression evaluating to the parent of
// the element behind token, captured at resolve time.
func ContainerExpr(token string) (string, error) {
	return Call(`function (token) {
	const entry = (window.`+Registry+` || {})[token];
	if (!entry) throw new Error("unknown element handle " + token);
	return entry.container;
}`, token)
}
