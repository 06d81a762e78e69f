package axe

const injectSourceJS = `function (source) {
	const s = document.createElement("script");
	s.textContent = source;
	document.head.appendChild(s);
	s.remove();
	return typeof window.axe !== "undefined";
}`

const injectURLJS = `function (url) {
	return new Promise(function (resolve, reject) {
		const s = document.createElement("script");
		s.src = url;
		s.onload = function () { resolve(typeof window.axe !== "undefined"); };
		s.onerror = function () { reject(new Error("failed to load " + url)); };
		document.head.appendChild(s);
	});
}`

// runJS keeps violations whose nodes lie inside the nodes standing in for the
// checked element.
const runJS = `function (container, nodes, options) {
	const touches = function (el) {
		return nodes.some(function (n) { return n === el || n.contains(el); });
	};
	return window.axe.run(container, options).then(function (results) {
		const out = [];
		results.violations.forEach(function (v) {
			const hit = v.nodes.filter(function (n) {
				return n.element ? touches(n.element) : true;
			});
			if (hit.length === 0) return;
			out.push({
				id: v.id,
				impact: v.impact || "",
				description: v.description || "",
				help: v.help || "",
				targets: hit.map(function (n) { return [].concat(n.target).join(" "); })
			});
		});
		return out;
	});
}`
